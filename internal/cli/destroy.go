package cli

import (
	"github.com/spf13/cobra"
)

// newDestroyCmd runs a teardown stack. Teardown stacks use the same step
// blocks as deploy stacks, with terraform steps set to action = "destroy" and
// dependencies reversed.
func newDestroyCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <stack.hcl> [more stacks...]",
		Short: "Run a teardown stack, removing the deployed infrastructure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stackApp, appConfig := opts.newApp(args)
			if err := stackApp.Run(cmd.Context(), appConfig); err != nil {
				return failuref("destroy failed: %v", err)
			}
			return nil
		},
	}
}
