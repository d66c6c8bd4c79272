package cli

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vk/stackctl/internal/app"
	"github.com/vk/stackctl/internal/hcl"
)

// globalOpts holds the flags shared by every subcommand.
type globalOpts struct {
	outW        io.Writer
	logLevel    string
	logFormat   string
	workers     int
	modulesPath string
}

// newApp constructs the application for stack-based subcommands.
func (g *globalOpts) newApp(stackPaths []string) (*app.App, *app.AppConfig) {
	appConfig := &app.AppConfig{
		StackPaths:  stackPaths,
		ModulesPath: g.modulesPath,
		LogFormat:   g.logFormat,
		LogLevel:    g.logLevel,
		WorkerCount: g.workers,
	}
	return app.NewApp(g.outW, appConfig, hcl.NewLoader()), appConfig
}

// NewRootCmd builds the full stackctl command tree writing to outW.
func NewRootCmd(outW io.Writer) *cobra.Command {
	opts := &globalOpts{outW: outW}

	rootCmd := &cobra.Command{
		Use:   "stackctl",
		Short: "Declarative deployment orchestrator for GCP MLOps stacks",
		Long: `stackctl sequences terraform modules, container builds, Cloud Run services
and monitoring checks described in HCL stack files. Steps declare their
dependencies and run concurrently where the graph allows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of concurrent step workers")
	rootCmd.PersistentFlags().StringVar(&opts.modulesPath, "modules-path", "modules", "directory holding module manifests")

	rootCmd.AddCommand(newApplyCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newDestroyCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newEnvCmd(opts))
	rootCmd.AddCommand(newDriftCmd(opts))
	rootCmd.AddCommand(newWaitCmd(opts))

	return rootCmd
}
