package webhook

import "errors"

var (
	ErrInvalidJSON    = errors.New("invalid payload format")
	ErrMissingEntry   = errors.New("payload has no entry")
	ErrMissingChanges = errors.New("no changes in payload")
)
