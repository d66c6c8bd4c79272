// Package env_file provides a runner that rewrites a dotenv file with values
// resolved during deployment, so application containers pick up fresh service
// URLs and database addresses.
package env_file

import (
	"reflect"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the env_file runner handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunEnvFile", &registry.RegisteredRunner{
		NewInput:  func() any { return new(RunnerInput) },
		InputType: reflect.TypeOf(RunnerInput{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunEnvFile,
	})
}
