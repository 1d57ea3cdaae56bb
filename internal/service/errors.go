package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrMobileTaken        = errors.New("mobile number already registered")
	ErrInvalidCredentials = errors.New("invalid mobile or password")
)
