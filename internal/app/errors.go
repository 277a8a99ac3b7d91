package service

import "errors"

// Sentinel error kinds for the service. Store and domain errors are wrapped
// and pass through unchanged for errors.Is.
var (
	ErrInvalidEvent    = errors.New("invalid event")
	ErrInvalidCriteria = errors.New("invalid view criteria")
	ErrMissingUser     = errors.New("user id required")
	ErrSessionNotFound = errors.New("session not found")
	ErrImportDisabled  = errors.New("importer not configured")
	ErrStopped         = errors.New("service stopped")
)
