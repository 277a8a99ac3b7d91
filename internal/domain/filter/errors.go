package filter

import "errors"

// ErrInvalidRange is returned for an unknown date range name.
var ErrInvalidRange = errors.New("invalid date range")
