package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vk/stackctl/internal/envfile"
	"github.com/vk/stackctl/internal/health"
)

// newCheckCmd probes service endpoints and prints a verdict per endpoint.
// Endpoints come from name=url arguments, from an env file, or both.
func newCheckCmd(opts *globalOpts) *cobra.Command {
	var (
		envFile string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check [name=url ...]",
		Short: "Probe deployed service endpoints and report HEALTHY or FAILED",
		Long: `Probe each endpoint once over HTTP. Endpoints are given as name=url
arguments, or collected from an env file where every key ending in _URL is
treated as an endpoint.

Exits non-zero when any endpoint fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoints, err := collectEndpoints(args, envFile)
			if err != nil {
				return err
			}
			if len(endpoints) == 0 {
				return usageErrorf("no endpoints to check: pass name=url arguments or --env-file")
			}

			checker := health.NewChecker(timeout)
			defer checker.Close()

			results := checker.CheckAll(cmd.Context(), endpoints)
			failed := 0
			for _, result := range results {
				fmt.Fprintf(opts.outW, "%-20s %s\n", result.Name, result.Verdict())
				if !result.Healthy {
					failed++
				}
			}
			if failed > 0 {
				return failuref("%d of %d endpoints failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "env file whose *_URL keys are probed")
	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "per-endpoint probe timeout")
	return cmd
}

func collectEndpoints(args []string, envFile string) ([]health.Endpoint, error) {
	var endpoints []health.Endpoint

	for _, arg := range args {
		name, url, ok := strings.Cut(arg, "=")
		if !ok || name == "" || url == "" {
			return nil, usageErrorf("invalid endpoint %q, expected name=url", arg)
		}
		endpoints = append(endpoints, health.Endpoint{Name: name, URL: url})
	}

	if envFile != "" {
		values, err := envfile.Parse(envFile)
		if err != nil {
			return nil, failuref("%v", err)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			if strings.HasSuffix(k, "_URL") {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := strings.ToLower(strings.TrimSuffix(k, "_URL"))
			endpoints = append(endpoints, health.Endpoint{Name: name, URL: values[k]})
		}
	}

	return endpoints, nil
}
