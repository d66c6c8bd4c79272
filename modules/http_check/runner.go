package http_check

import (
	"context"
	"time"

	"resty.dev/v3"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/health"
)

// RunnerInput defines the arguments for the http_check runner.
type RunnerInput struct {
	Name     string `hcl:"name,optional"`
	URL      string `hcl:"url"`
	Attempts int    `hcl:"attempts,optional"`
	Interval string `hcl:"interval,optional"`
	Required bool   `hcl:"required,optional"`
}

// RunnerDeps declares the shared http_client resource this runner uses.
type RunnerDeps struct {
	Client *resty.Client `hcl:"client"`
}

// onRunHttpCheck probes the endpoint and reports the verdict. A failed probe
// fails the step unless required is set to false.
func onRunHttpCheck(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx)

	name := input.Name
	if name == "" {
		name = input.URL
	}
	attempts := input.Attempts
	if attempts < 1 {
		attempts = 1
	}
	interval := 5 * time.Second
	if input.Interval != "" {
		parsed, err := time.ParseDuration(input.Interval)
		if err != nil {
			return nil, err
		}
		interval = parsed
	}

	checker := health.NewCheckerWithClient(deps.Client)
	result := checker.Probe(ctx, health.Endpoint{Name: name, URL: input.URL}, attempts, interval)

	if result.Healthy {
		logger.Info("Endpoint healthy.", "name", name, "url", input.URL, "status", result.StatusCode)
	} else {
		logger.Warn("Endpoint unhealthy.", "name", name, "url", input.URL, "error", result.Err)
		if input.Required {
			return nil, result.Err
		}
	}

	return map[string]any{
		"verdict": result.Verdict(),
		"healthy": result.Healthy,
		"status":  result.StatusCode,
	}, nil
}
