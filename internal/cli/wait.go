package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vk/stackctl/internal/health"
)

// newWaitCmd blocks until an endpoint reports healthy or the retry budget is
// spent.
func newWaitCmd(opts *globalOpts) *cobra.Command {
	var (
		url      string
		retries  int
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for a service endpoint to become healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return usageErrorf("--url is required")
			}

			checker := health.NewChecker(timeout)
			defer checker.Close()

			fmt.Fprintf(opts.outW, "Waiting for %s...\n", url)
			result := checker.Probe(cmd.Context(), health.Endpoint{Name: "wait", URL: url}, retries, interval)
			if !result.Healthy {
				return failuref("endpoint %s did not become healthy: %v", url, result.Err)
			}
			fmt.Fprintf(opts.outW, "%s is ready (status %d).\n", url, result.StatusCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "endpoint URL to wait for")
	cmd.Flags().IntVar(&retries, "retries", 30, "number of probe attempts")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "delay between attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "per-probe timeout")
	return cmd
}
