package ticketing

import "errors"

// Sentinel kinds for ticketing errors.
var (
	ErrUnavailable = errors.New("ticketing api unavailable")
	ErrBadResponse = errors.New("ticketing api bad response")
	ErrNoAPIKey    = errors.New("ticketing api key not configured")
)
