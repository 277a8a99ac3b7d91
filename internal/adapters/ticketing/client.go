// Package ticketing is a client for the Discovery API used by the import job.
// Calls go through a circuit breaker so a failing upstream is not hammered.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

const (
	defaultBaseURL      = "https://app.ticketmaster.com/discovery/v2"
	defaultTimeout      = 10 * time.Second
	defaultMinRequests  = 5
	defaultFailureRatio = 0.6
	defaultOpenTimeout  = time.Minute
	breakerName         = "ticketing"
	maxBodyBytes        = 8 << 20
)

// Query selects events around a centre point.
type Query struct {
	Latitude  float64
	Longitude float64
	RadiusKm  int
	Size      int
	Page      int
}

// Client calls the Discovery API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     logger.Logger
	cb      *gobreaker.CircuitBreaker[*SearchResult]

	minRequests  uint32
	failureRatio float64
	openTimeout  time.Duration
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: defaultTimeout},
		log:          logger.Nop(),
		minRequests:  defaultMinRequests,
		failureRatio: defaultFailureRatio,
		openTimeout:  defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.UpdateBreakerState(breakerName, int(gobreaker.StateClosed))
	c.cb = gobreaker.NewCircuitBreaker[*SearchResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= c.failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.UpdateBreakerState(name, int(to))
		},
		// Caller cancellation says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Search fetches one page of events around q's centre.
func (c *Client) Search(ctx context.Context, q Query) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	res, err := c.cb.Execute(func() (*SearchResult, error) {
		return c.search(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return res, err
}

func (c *Client) search(ctx context.Context, q Query) (*SearchResult, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("latlong", strconv.FormatFloat(q.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.RadiusKm))
	params.Set("unit", "km")
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events.json?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	c.log.Debug(ctx, "ticketing search",
		logger.Int("events", len(sr.Embedded.Events)),
		logger.Int("page", sr.Page.Number),
		logger.Int("total_pages", sr.Page.TotalPages))
	return &SearchResult{Events: sr.Embedded.Events, Page: sr.Page}, nil
}
