package print

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/stackctl/internal/ctxlog"
)

// RunnerInput defines the arguments for the print runner.
type RunnerInput struct {
	Value map[string]string `hcl:"input"`
}

// RunnerDeps is empty because this runner does not use any resources.
type RunnerDeps struct{}

// onRunPrint writes each key of the input map on its own line, sorted for
// stable output.
func onRunPrint(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Printing input")

	if input.Value == nil {
		fmt.Println("      (null)")
		return nil, nil
	}

	keys := make([]string, 0, len(input.Value))
	for k := range input.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("      %s = %q\n", k, input.Value[k])
	}

	return nil, nil
}
