package ticketing

import (
	"net/http"
	"time"

	"github.com/okian/eventpulse/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithBreaker configures when the circuit opens: after minRequests with a
// failure ratio of at least ratio, staying open for openTimeout.
func WithBreaker(minRequests uint32, ratio float64, openTimeout time.Duration) Option {
	return func(c *Client) {
		if minRequests > 0 {
			c.minRequests = minRequests
		}
		if ratio > 0 && ratio <= 1 {
			c.failureRatio = ratio
		}
		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
