package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/dag"
	"github.com/vk/stackctl/internal/executor"
)

// Run executes the loaded stack based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *AppConfig) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	graph, err := dag.Build(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No steps found in stack, nothing to do.")
		return nil
	}

	a.logger.Info("🚀 Starting deployment run...")
	exec := executor.New(graph, appConfig.WorkerCount, a.registry, a.converter)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}
	a.logger.Info("🏁 Deployment finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Plan builds the dependency graph and writes the execution order without
// running anything. Steps in the same level run concurrently.
func (a *App) Plan(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	graph, err := dag.Build(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}

	if len(graph.Nodes) == 0 {
		fmt.Fprintln(a.outW, "Nothing to run.")
		return nil
	}

	levels := graph.Levels()
	fmt.Fprintf(a.outW, "Execution plan (%d steps, %d stages):\n", len(graph.Nodes), len(levels))
	for i, level := range levels {
		fmt.Fprintf(a.outW, "  Stage %d:\n", i+1)
		for _, id := range level {
			node := graph.Nodes[id]
			deps := make([]string, 0, len(node.Deps))
			for depID := range node.Deps {
				deps = append(deps, depID)
			}
			sort.Strings(deps)
			if len(deps) > 0 {
				fmt.Fprintf(a.outW, "    %s (after %v)\n", id, deps)
			} else {
				fmt.Fprintf(a.outW, "    %s\n", id)
			}
		}
	}
	return nil
}
