package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("document not found")
	ErrForbidden         = errors.New("operation not permitted for requester")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrClosed            = errors.New("store closed")
)
