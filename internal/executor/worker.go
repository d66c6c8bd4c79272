package executor

import (
	"context"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.ID)

		if ctx.Err() != nil {
			if n.TransitionState(dag.Pending, dag.Skipped) {
				n.SetError(ctx.Err())
				// Dependents of a node skipped here will never be unlocked
				// through the ready channel, so they must be accounted for now
				// or Run would wait on them forever.
				e.skipDependents(ctx, n)
				e.wg.Done()
			}
			continue
		}

		// A queued node may have been skipped by a concurrent failure walk.
		if !n.TransitionState(dag.Pending, dag.Running) {
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		var err error
		switch n.Type {
		case dag.ResourceNode:
			err = e.runResourceNode(ctx, n)
		case dag.StepNode:
			err = e.runStepNode(ctx, n)
		}

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			n.SetError(err)
			n.SetState(dag.Failed)
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		n.SetState(dag.Done)

		// Unlock dependents whose last dependency just finished.
		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		// A finished step releases its resource dependencies; a resource with
		// no remaining dependent steps is destroyed immediately.
		if n.Type == dag.StepNode {
			for _, dep := range n.Deps {
				if dep.Type == dag.ResourceNode {
					if dep.DecrementDependentCount() == 0 {
						workerLogger.Debug("Scheduling destruction for idle resource.", "resourceID", dep.ID)
						e.destroyResource(ctx, dep)
					}
				}
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
