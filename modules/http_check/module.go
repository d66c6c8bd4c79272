// Package http_check provides a runner that probes a deployed service
// endpoint until it reports healthy, through a shared http_client resource.
package http_check

import (
	"reflect"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the http_check runner handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunHttpCheck", &registry.RegisteredRunner{
		NewInput:  func() any { return new(RunnerInput) },
		InputType: reflect.TypeOf(RunnerInput{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunHttpCheck,
	})
}
