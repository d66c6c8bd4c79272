package env_file

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/envfile"
)

// RunnerInput defines the arguments for the env_file runner.
type RunnerInput struct {
	Source string            `hcl:"source,optional"`
	Target string            `hcl:"target"`
	Values map[string]string `hcl:"values"`
}

// RunnerDeps is empty because this runner only touches the local filesystem.
type RunnerDeps struct{}

// onRunEnvFile merges values over the source file and writes the target. An
// absent source starts from an empty set; a missing source path is an error
// only when one was named.
func onRunEnvFile(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx).With("target", input.Target)

	base := map[string]string{}
	if input.Source != "" {
		if _, err := os.Stat(input.Source); err != nil {
			return nil, fmt.Errorf("source env file %s: %w", input.Source, err)
		}
		parsed, err := envfile.Parse(input.Source)
		if err != nil {
			return nil, err
		}
		base = parsed
	}

	merged := envfile.Merge(base, input.Values)
	if err := envfile.Write(input.Target, merged, time.Now()); err != nil {
		return nil, err
	}

	logger.Info("Env file written.", "keys", len(merged))
	return map[string]any{
		"path": input.Target,
		"keys": len(merged),
	}, nil
}
