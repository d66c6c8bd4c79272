package docker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/stackctl/internal/ctxlog"
)

// RunnerInput defines the arguments for the docker runner.
type RunnerInput struct {
	Tag        string `hcl:"tag"`
	Context    string `hcl:"context,optional"`
	Dockerfile string `hcl:"dockerfile,optional"`
	Platform   string `hcl:"platform,optional"`
	Push       bool   `hcl:"push,optional"`
}

// RunnerDeps is empty because this runner shells out to the docker CLI.
type RunnerDeps struct{}

// onRunDocker builds the image and optionally pushes it.
func onRunDocker(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx).With("tag", input.Tag)

	buildContext := input.Context
	if buildContext == "" {
		buildContext = "."
	}

	buildArgs := []string{"build", "-t", input.Tag}
	if input.Dockerfile != "" {
		buildArgs = append(buildArgs, "-f", input.Dockerfile)
	}
	if input.Platform != "" {
		buildArgs = append(buildArgs, "--platform", input.Platform)
	}
	buildArgs = append(buildArgs, buildContext)

	logger.Info("Building image.")
	if err := runDocker(ctx, buildArgs...); err != nil {
		return nil, err
	}

	if input.Push {
		logger.Info("Pushing image.")
		if err := runDocker(ctx, "push", input.Tag); err != nil {
			return nil, err
		}
	}

	return map[string]any{"tag": input.Tag}, nil
}

func runDocker(ctx context.Context, args ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running docker command.", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "docker", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
