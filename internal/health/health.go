// Package health probes deployed service endpoints over HTTP and reports a
// per-endpoint verdict.
package health

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/vk/stackctl/internal/ctxlog"
)

// DefaultTimeout bounds a single endpoint probe.
const DefaultTimeout = 30 * time.Second

// Endpoint is one service to probe.
type Endpoint struct {
	Name string
	URL  string
}

// Result is the outcome of probing one endpoint.
type Result struct {
	Name       string
	URL        string
	Healthy    bool
	StatusCode int
	Err        error
}

// Verdict renders the result as its report keyword.
func (r Result) Verdict() string {
	if r.Healthy {
		return "HEALTHY"
	}
	return "FAILED"
}

// Checker probes endpoints with a shared HTTP client.
type Checker struct {
	client *resty.Client
}

// NewChecker builds a checker with the given per-request timeout. A zero
// timeout uses DefaultTimeout.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().SetTimeout(timeout)
	return &Checker{client: client}
}

// NewCheckerWithClient wraps an existing client, typically a shared
// http_client resource.
func NewCheckerWithClient(client *resty.Client) *Checker {
	return &Checker{client: client}
}

// Close releases the underlying client.
func (c *Checker) Close() error {
	return c.client.Close()
}

// Check probes a single endpoint once. Any 2xx status is healthy.
func (c *Checker) Check(ctx context.Context, ep Endpoint) Result {
	result := Result{Name: ep.Name, URL: ep.URL}

	resp, err := c.client.R().SetContext(ctx).Get(ep.URL)
	if err != nil {
		result.Err = fmt.Errorf("probe of %s failed: %w", ep.URL, err)
		return result
	}
	result.StatusCode = resp.StatusCode()
	result.Healthy = resp.StatusCode() >= 200 && resp.StatusCode() < 300
	if !result.Healthy {
		result.Err = fmt.Errorf("endpoint %s returned status %d", ep.URL, resp.StatusCode())
	}
	return result
}

// CheckAll probes every endpoint sequentially and reports each result.
func (c *Checker) CheckAll(ctx context.Context, endpoints []Endpoint) []Result {
	logger := ctxlog.FromContext(ctx)
	results := make([]Result, 0, len(endpoints))
	for _, ep := range endpoints {
		result := c.Check(ctx, ep)
		if result.Healthy {
			logger.Info("Endpoint healthy.", "name", ep.Name, "url", ep.URL, "status", result.StatusCode)
		} else {
			logger.Warn("Endpoint unhealthy.", "name", ep.Name, "url", ep.URL, "error", result.Err)
		}
		results = append(results, result)
	}
	return results
}

// Probe retries an endpoint until it is healthy, the attempt budget is spent,
// or the context is cancelled.
func (c *Checker) Probe(ctx context.Context, ep Endpoint, attempts int, interval time.Duration) Result {
	if attempts < 1 {
		attempts = 1
	}
	var result Result
	for i := 0; i < attempts; i++ {
		result = c.Check(ctx, ep)
		if result.Healthy {
			return result
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
			return result
		case <-time.After(interval):
		}
	}
	return result
}
