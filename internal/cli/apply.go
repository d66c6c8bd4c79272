package cli

import (
	"github.com/spf13/cobra"
)

// newApplyCmd runs the steps of one or more stack files.
func newApplyCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <stack.hcl> [more stacks...]",
		Short: "Deploy the stack described by the given HCL files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stackApp, appConfig := opts.newApp(args)
			if err := stackApp.Run(cmd.Context(), appConfig); err != nil {
				return failuref("apply failed: %v", err)
			}
			return nil
		},
	}
}
