// Package docker provides a runner that builds and pushes container images
// with the docker CLI, used to publish service images to Artifact Registry
// before Cloud Run deployment.
package docker

import (
	"reflect"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the docker runner handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunDocker", &registry.RegisteredRunner{
		NewInput:  func() any { return new(RunnerInput) },
		InputType: reflect.TypeOf(RunnerInput{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunDocker,
	})
}
