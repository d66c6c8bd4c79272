// Package env_vars provides a runner that exposes the process environment to
// stack files, so deployments can reference CI-provided settings like the
// target project ID.
package env_vars

import (
	"context"
	"os"
	"reflect"
	"strings"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// RunnerDeps is an empty struct because this runner does not use any resources.
type RunnerDeps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	All map[string]string `cty:"all"`
}

// onRunEnvVars reads the process environment into a map.
func onRunEnvVars(ctx context.Context, deps *RunnerDeps, input any) (*Output, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	return &Output{All: envMap}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunEnvVars", &registry.RegisteredRunner{
		NewInput:  func() any { return new(struct{}) }, // No 'arguments' block.
		InputType: reflect.TypeOf(struct{}{}),
		NewDeps:   func() any { return new(RunnerDeps) },
		Fn:        onRunEnvVars,
	})
}
