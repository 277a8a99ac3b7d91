package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrPermissionDenied is returned by a Calendar when the user has not
	// granted calendar access.
	ErrPermissionDenied = errors.New("calendar permission denied")
	ErrInvalidWeights   = errors.New("invalid scoring weights")
)
