// Package gcloud provides a runner for post-deploy lookups that terraform
// outputs do not cover, such as Cloud Run service URLs and Cloud SQL instance
// addresses.
package gcloud

import (
	"reflect"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the gcloud runner handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunGcloud", &registry.RegisteredRunner{
		NewInput:  func() any { return new(RunnerInput) },
		InputType: reflect.TypeOf(RunnerInput{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunGcloud,
	})
}
