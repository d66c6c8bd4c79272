package http_client

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"
)

// AssetInput defines the arguments for creating an http_client resource.
type AssetInput struct {
	Timeout string `hcl:"timeout,optional"`
}

// createHttpClient is the 'create' handler for the asset. It returns a live
// *resty.Client shared across steps.
func createHttpClient(ctx context.Context, input *AssetInput) (*resty.Client, error) {
	timeout := 30 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		timeout = parsed
	}

	client := resty.New().SetTimeout(timeout)
	return client, nil
}

// destroyHttpClient is the 'destroy' handler for the asset.
func destroyHttpClient(client *resty.Client) error {
	return client.Close()
}
