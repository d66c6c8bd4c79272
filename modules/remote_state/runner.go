package remote_state

import (
	"context"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/tfstate"
)

// RunnerInput defines the arguments for the remote_state runner.
type RunnerInput struct {
	Bucket string `hcl:"bucket"`
	Prefix string `hcl:"prefix"`
}

// RunnerDeps is empty because this runner opens its own storage client.
type RunnerDeps struct{}

// onRunRemoteState fetches the state object and exposes its root outputs.
func onRunRemoteState(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx).With("bucket", input.Bucket, "prefix", input.Prefix)

	backend, err := tfstate.NewGCSBackend(ctx, input.Bucket)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	state, err := backend.ReadState(ctx, input.Prefix)
	if err != nil {
		return nil, err
	}

	outputs, err := state.OutputValues()
	if err != nil {
		return nil, err
	}
	logger.Debug("Read remote state outputs.", "serial", state.Serial, "count", len(outputs))
	return outputs, nil
}
