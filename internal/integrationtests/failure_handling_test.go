package integrationtests

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stackctl/internal/registry"
	"github.com/vk/stackctl/internal/testutil"
)

const flakyManifest = `
runner "flaky" {
  lifecycle {
    on_run = "OnRunFlaky"
  }
  input "fail" {
    type    = bool
    default = false
  }
  output "ok" {
    type = bool
  }
}
`

type flakyInput struct {
	Fail bool `hcl:"fail,optional"`
}

func flakyModule(ran *atomic.Int32) *testutil.SimpleModule {
	return &testutil.SimpleModule{
		RunnerName: "OnRunFlaky",
		Runner: &registry.RegisteredRunner{
			NewInput:  func() any { return new(flakyInput) },
			InputType: reflect.TypeOf(flakyInput{}),
			NewDeps:   func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *flakyInput) (any, error) {
				if input.Fail {
					return nil, errors.New("terraform apply exploded")
				}
				ran.Add(1)
				return map[string]any{"ok": true}, nil
			},
		},
	}
}

func TestStack_FailureSkipsDependents(t *testing.T) {
	var ran atomic.Int32

	files := map[string]string{
		"modules/flaky/manifest.hcl": flakyManifest,
		"stack/deploy.hcl": `
			step "flaky" "infrastructure" {
				arguments { fail = true }
			}
			step "flaky" "model_api" {
				arguments { fail = false }
				depends_on = ["flaky.infrastructure"]
			}
			step "flaky" "health" {
				arguments { fail = false }
				depends_on = ["flaky.model_api"]
			}
		`,
	}

	result := testutil.RunStack(t, files, flakyModule(&ran))
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "terraform apply exploded")

	// Neither transitive dependent may have run.
	assert.Equal(t, int32(0), ran.Load())
	assert.Contains(t, result.LogOutput, "Skipping")
}

func TestStack_SiblingBranchSkippedAfterFailure(t *testing.T) {
	var ran atomic.Int32

	// A single worker serializes scheduling: the failing root runs first
	// (roots are queued in sorted order), then the unrelated branch's root is
	// pulled off the queue after cancellation. Its child must still be
	// accounted for or the run would never return.
	files := map[string]string{
		"modules/flaky/manifest.hcl": flakyManifest,
		"stack/deploy.hcl": `
			step "flaky" "a_broken" {
				arguments { fail = true }
			}
			step "flaky" "pipeline" {
				arguments { fail = false }
			}
			step "flaky" "pipeline_child" {
				arguments { fail = false }
				depends_on = ["flaky.pipeline"]
			}
		`,
	}

	done := make(chan *testutil.HarnessResult, 1)
	go func() {
		done <- testutil.RunStackWorkers(t, files, 1, flakyModule(&ran))
	}()

	select {
	case result := <-done:
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "terraform apply exploded")
		assert.Equal(t, int32(0), ran.Load())
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish after a sibling branch failed")
	}
}

func TestStack_FailureDoesNotAffectFinishedSteps(t *testing.T) {
	var ran atomic.Int32

	files := map[string]string{
		"modules/flaky/manifest.hcl": flakyManifest,
		"stack/deploy.hcl": `
			step "flaky" "base" {
				arguments { fail = false }
			}
			step "flaky" "broken" {
				arguments { fail = true }
				depends_on = ["flaky.base"]
			}
		`,
	}

	result := testutil.RunStack(t, files, flakyModule(&ran))
	require.Error(t, result.Err)
	assert.Equal(t, int32(1), ran.Load())
}

func TestStack_UnknownRunnerTypeFailsAtStartup(t *testing.T) {
	files := map[string]string{
		"modules/noop/manifest.hcl": testutil.NoOpManifest,
		"stack/deploy.hcl": `
			step "nonexistent" "a" {
			}
		`,
	}

	result := testutil.RunStack(t, files, &testutil.NoOpModule{})
	require.Error(t, result.Err)
}
