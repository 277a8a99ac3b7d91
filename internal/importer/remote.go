package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Remote triggers imports on a running service over HTTP.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a trigger for the service at baseURL.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckHealth verifies the service answers on /healthz.
func (r *Remote) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: status %d", resp.StatusCode)
	}
	return nil
}

// Trigger asks the service to run one import and returns its stats.
func (r *Remote) Trigger(ctx context.Context) (Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/admin/import", http.NoBody)
	if err != nil {
		return Stats{}, fmt.Errorf("build import request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("import request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Stats{}, fmt.Errorf("read import response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Stats{}, fmt.Errorf("import request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var st Stats
	if err := json.Unmarshal(body, &st); err != nil {
		return Stats{}, fmt.Errorf("decode import stats: %w", err)
	}
	return st, nil
}
