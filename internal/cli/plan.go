package cli

import (
	"github.com/spf13/cobra"
)

// newPlanCmd prints the execution order without running anything.
func newPlanCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <stack.hcl> [more stacks...]",
		Short: "Show the ordered execution plan for the given stacks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stackApp, _ := opts.newApp(args)
			if err := stackApp.Plan(cmd.Context()); err != nil {
				return failuref("plan failed: %v", err)
			}
			return nil
		},
	}
}
