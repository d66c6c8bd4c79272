package integrationtests

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stackctl/internal/registry"
	"github.com/vk/stackctl/internal/testutil"
)

const emitManifest = `
runner "emit" {
  lifecycle {
    on_run = "OnRunEmit"
  }
  input "value" {
    type    = string
    default = ""
  }
  output "value" {
    type = string
  }
}
`

type emitInput struct {
	Value string `hcl:"value,optional"`
}

// recorder tracks handler invocations across concurrent workers.
type recorder struct {
	mu     sync.Mutex
	order  []string
	inputs map[string]string
}

func (r *recorder) record(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
	if r.inputs == nil {
		r.inputs = make(map[string]string)
	}
	r.inputs[name] = value
}

func TestStack_OutputsFlowThroughReferences(t *testing.T) {
	rec := &recorder{}

	// The emit handler records its step name through the input value: the
	// producer emits a constant, the consumer receives it by reference.
	module := &testutil.SimpleModule{
		RunnerName: "OnRunEmit",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(emitInput) },
			InputType: reflect.TypeOf(emitInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *emitInput) (any, error) {
				rec.record(input.Value, input.Value)
				return map[string]any{"value": input.Value + "-out"}, nil
			},
		},
	}

	files := map[string]string{
		"modules/emit/manifest.hcl": emitManifest,
		"stack/deploy.hcl": `
			step "emit" "producer" {
				arguments {
					value = "infra"
				}
			}
			step "emit" "consumer" {
				arguments {
					value = step.emit.producer.output.value
				}
			}
		`,
	}

	result := testutil.RunStack(t, files, module)
	require.NoError(t, result.Err, "logs:\n%s", result.LogOutput)

	require.Len(t, rec.order, 2)
	assert.Equal(t, "infra", rec.order[0])
	assert.Equal(t, "infra-out", rec.order[1])
}

func TestStack_IndependentStepsBothRun(t *testing.T) {
	rec := &recorder{}

	files := map[string]string{
		"modules/emit/manifest.hcl": emitManifest,
		"stack/deploy.hcl": `
			step "emit" "a" {
				arguments { value = "a" }
			}
			step "emit" "b" {
				arguments { value = "b" }
			}
		`,
	}

	module := &testutil.SimpleModule{
		RunnerName: "OnRunEmit",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(emitInput) },
			InputType: reflect.TypeOf(emitInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *emitInput) (any, error) {
				rec.record(input.Value, input.Value)
				return nil, nil
			},
		},
	}
	result := testutil.RunStack(t, files, module)
	require.NoError(t, result.Err, "logs:\n%s", result.LogOutput)

	require.Len(t, rec.order, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, rec.order)
}

func TestStack_MissingRequiredArgumentFails(t *testing.T) {
	files := map[string]string{
		"modules/strict/manifest.hcl": `
			runner "strict" {
				lifecycle {
					on_run = "OnRunStrict"
				}
				input "dir" {
					type = string
				}
			}
		`,
		"stack/deploy.hcl": `
			step "strict" "a" {
			}
		`,
	}

	type strictInput struct {
		Dir string `hcl:"dir"`
	}
	module := &testutil.SimpleModule{
		RunnerName: "OnRunStrict",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(strictInput) },
			InputType: reflect.TypeOf(strictInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *strictInput) (any, error) {
				return nil, nil
			},
		},
	}

	result := testutil.RunStack(t, files, module)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "missing required argument")
}
