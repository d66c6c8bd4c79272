// Package drift_check provides a runner that compares recently logged
// predictions against a reference dataset and records a drift report in the
// monitoring database.
package drift_check

import (
	"reflect"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the drift_check runner handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunDriftCheck", &registry.RegisteredRunner{
		NewInput:  func() any { return new(RunnerInput) },
		InputType: reflect.TypeOf(RunnerInput{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunDriftCheck,
	})
}
