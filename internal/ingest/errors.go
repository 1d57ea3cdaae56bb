package ingest

import "errors"

var (
	ErrDirNotFound     = errors.New("payload directory not found")
	ErrArchiveRequired = errors.New("watch mode requires an archive directory")
)
