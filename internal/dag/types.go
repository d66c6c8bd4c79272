package dag

import (
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/stackctl/internal/config"
)

// NodeType distinguishes runnable steps from stateful resources.
type NodeType int

const (
	StepNode NodeType = iota
	ResourceNode
)

// State is the lifecycle state of a node during execution.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Graph is a collection of nodes and their dependencies, representing a DAG.
type Graph struct {
	// Nodes stores all nodes in the graph, keyed by their unique ID.
	Nodes map[string]*Node
}

// Node represents a single vertex in the graph: one step or resource.
type Node struct {
	ID   string
	Name string
	Type NodeType

	StepConfig     *config.Step
	ResourceConfig *config.Resource

	// Deps holds the set of nodes that this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the set of nodes that depend on this node (successors).
	Dependents map[string]*Node

	// Output is the cty value produced by a completed step, consumed by
	// dependent expressions.
	Output cty.Value
	// Error records why a node failed or was skipped.
	Error error

	state atomic.Int32

	// pendingDeps counts unfinished dependencies; a node becomes ready when
	// it reaches zero.
	pendingDeps atomic.Int32
	// pendingDependents counts unfinished step dependents of a resource;
	// the resource is destroyed when it reaches zero.
	pendingDependents atomic.Int32

	// mu guards Output and Error, which are written by the owning worker
	// and read by dependents after the state transition to Done.
	mu sync.Mutex
}

// SetInitialCounters primes the dependency counters before execution.
func (n *Node) SetInitialCounters() {
	n.pendingDeps.Store(int32(len(n.Deps)))
	dependentSteps := 0
	for _, dep := range n.Dependents {
		if dep.Type == StepNode {
			dependentSteps++
		}
	}
	n.pendingDependents.Store(int32(dependentSteps))
}

// State returns the node's current lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// SetState unconditionally transitions the node to the given state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// TransitionState atomically moves from one state to another. It reports
// whether the transition happened, which guards against double-processing a
// node that is both a skip candidate and a queued dependent.
func (n *Node) TransitionState(from, to State) bool {
	return n.state.CompareAndSwap(int32(from), int32(to))
}

// DecrementDepCount records one finished dependency and returns the number
// still outstanding.
func (n *Node) DecrementDepCount() int32 {
	return n.pendingDeps.Add(-1)
}

// DecrementDependentCount records one finished dependent step and returns the
// number still outstanding.
func (n *Node) DecrementDependentCount() int32 {
	return n.pendingDependents.Add(-1)
}

// SetOutput stores the step's output value.
func (n *Node) SetOutput(v cty.Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Output = v
}

// GetOutput returns the step's output value.
func (n *Node) GetOutput() cty.Value {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Output
}

// SetError records the node's failure cause.
func (n *Node) SetError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Error = err
}

// GetError returns the node's failure cause, if any.
func (n *Node) GetError() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Error
}
