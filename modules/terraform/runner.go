package terraform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/vk/stackctl/internal/ctxlog"
)

// RunnerInput defines the arguments for the terraform runner.
type RunnerInput struct {
	Action        string            `hcl:"action,optional"`
	Dir           string            `hcl:"dir"`
	BackendBucket string            `hcl:"backend_bucket,optional"`
	BackendPrefix string            `hcl:"backend_prefix,optional"`
	Vars          map[string]string `hcl:"vars,optional"`
}

// RunnerDeps is empty because this runner shells out instead of using shared
// resources.
type RunnerDeps struct{}

// tfOutput matches one entry of `terraform output -json`.
type tfOutput struct {
	Sensitive bool            `json:"sensitive"`
	Value     json.RawMessage `json:"value"`
}

// onRunTerraform is the handler for the terraform runner's on_run event.
// It returns the module's outputs as a map so dependent steps can reference
// them as `step.terraform.<name>.output.<output_name>`.
func onRunTerraform(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx).With("dir", input.Dir)

	action := input.Action
	if action == "" {
		action = "apply"
	}

	if err := runInit(ctx, input); err != nil {
		return nil, err
	}

	switch action {
	case "apply":
		logger.Info("Applying terraform module.")
		if err := runCommand(ctx, input.Dir, applyArgs("apply", input.Vars)...); err != nil {
			return nil, err
		}
	case "destroy":
		logger.Info("Destroying terraform module.")
		if err := runCommand(ctx, input.Dir, applyArgs("destroy", input.Vars)...); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	case "output":
		// Read-only, fall through to the output collection below.
	default:
		return nil, fmt.Errorf("unsupported terraform action %q", action)
	}

	outputs, err := readOutputs(ctx, input.Dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Collected terraform outputs.", "count", len(outputs))
	return outputs, nil
}

func runInit(ctx context.Context, input *RunnerInput) error {
	args := []string{"init", "-input=false"}
	if input.BackendBucket != "" {
		args = append(args,
			"-backend-config", fmt.Sprintf("bucket=%s", input.BackendBucket),
			"-backend-config", fmt.Sprintf("prefix=%s", input.BackendPrefix),
		)
	}
	return runCommand(ctx, input.Dir, args...)
}

func applyArgs(action string, vars map[string]string) []string {
	args := []string{action, "-auto-approve", "-input=false"}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-var", fmt.Sprintf("%s=%s", k, vars[k]))
	}
	return args
}

func readOutputs(ctx context.Context, dir string) (map[string]any, error) {
	cmd := exec.CommandContext(ctx, "terraform", "output", "-json")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("terraform output failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var raw map[string]tfOutput
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse terraform outputs: %w", err)
	}

	outputs := make(map[string]any, len(raw))
	for name, out := range raw {
		var v any
		if err := json.Unmarshal(out.Value, &v); err != nil {
			return nil, fmt.Errorf("failed to decode terraform output %q: %w", name, err)
		}
		outputs[name] = v
	}
	return outputs, nil
}

func runCommand(ctx context.Context, dir string, args ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running terraform command.", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "terraform", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("terraform %s failed in %s: %w: %s", args[0], dir, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
