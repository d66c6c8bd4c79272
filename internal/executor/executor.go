// Package executor runs a built dependency graph: a pool of workers consumes
// ready nodes, evaluates their arguments against the outputs of completed
// dependencies, and dispatches to the registered Go handlers. A failed node
// cancels the run and skips its transitive dependents; there is no retry and
// no rollback.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/stackctl/internal/config"
	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/dag"
	"github.com/vk/stackctl/internal/registry"
)

// Executor orchestrates the end-to-end execution of a DAG.
type Executor struct {
	graph     *dag.Graph
	workers   int
	registry  *registry.Registry
	converter config.Converter

	wg sync.WaitGroup
	// resourceInstances maps resource node IDs to their live created objects.
	resourceInstances sync.Map
}

// New creates an Executor for the given graph.
func New(graph *dag.Graph, workers int, r *registry.Registry, converter config.Converter) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		graph:     graph,
		workers:   workers,
		registry:  r,
		converter: converter,
	}
}

// Run executes every node in the graph and blocks until all have finished,
// failed, or been skipped. The first failure cancels the run.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	e.wg.Add(len(e.graph.Nodes))

	for i := 0; i < e.workers; i++ {
		go e.worker(ctx, readyChan, cancel, i)
	}

	roots := e.graph.Roots()
	if len(roots) == 0 && len(e.graph.Nodes) > 0 {
		// detectCycles should have caught this; guard anyway.
		cancel()
		return fmt.Errorf("graph has nodes but no runnable roots")
	}
	for _, n := range roots {
		readyChan <- n
	}

	e.wg.Wait()
	close(readyChan)

	// Destroy any resources that survived the run, e.g. because their
	// dependents were skipped after a failure.
	e.destroyRemainingResources(ctx)

	var errs []error
	for _, n := range e.graph.Nodes {
		if n.State() == dag.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", n.ID, n.GetError()))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Debug("Executor finished with no failures.")
	return nil
}

// skipDependents marks every transitive dependent of a failed node as
// skipped. Nodes already queued are guarded by the state transition, so each
// node is accounted for exactly once.
func (e *Executor) skipDependents(ctx context.Context, n *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		if dependent.TransitionState(dag.Pending, dag.Skipped) {
			dependent.SetError(fmt.Errorf("skipped: dependency '%s' failed", n.ID))
			logger.Warn("Skipping node.", "node_id", dependent.ID, "failed_dependency", n.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		}
	}
}

// destroyRemainingResources tears down every created resource that was not
// already destroyed by the efficient-cleanup path during the run.
func (e *Executor) destroyRemainingResources(ctx context.Context) {
	e.resourceInstances.Range(func(key, _ any) bool {
		if n, ok := e.graph.Nodes[key.(string)]; ok {
			e.destroyResource(ctx, n)
		}
		return true
	})
}
