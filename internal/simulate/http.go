package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/tactile/internal/domain/motion"
)

// httpClient wraps http.Client with the service's base URL.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// ack mirrors the POST /samples response.
type ack struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

func (c *httpClient) get(ctx context.Context, p string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+p, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// health returns nil when GET /healthz answers 200.
func (c *httpClient) health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// stats fetches GET /stats.
func (c *httpClient) stats(ctx context.Context) (map[string]any, error) {
	resp, err := c.get(ctx, "/stats")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats returned status %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return out, nil
}

// postSamples sends a batch and returns how many the service queued. A
// full queue is not an error; any other non-202 answer is.
func (c *httpClient) postSamples(ctx context.Context, batch []motion.Sample) (int, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal samples: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/samples", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusTooManyRequests:
		var a ack
		if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
			return 0, fmt.Errorf("failed to decode ack: %w", err)
		}
		return a.Accepted, nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(msg))
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// number reads a numeric stats field; JSON numbers decode as float64.
func number(stats map[string]any, key string) int64 {
	if v, ok := stats[key].(float64); ok {
		return int64(v)
	}
	return 0
}
