// Package gcloudcli shells out to the gcloud CLI for the handful of lookups
// terraform does not cover, such as resolving Cloud Run URLs and Cloud SQL
// instance addresses after a deployment.
package gcloudcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/stackctl/internal/ctxlog"
)

// Client runs gcloud commands against one project and region.
type Client struct {
	Binary  string
	Project string
	Region  string
}

// New returns a client bound to a project and region. An empty binary falls
// back to "gcloud" on PATH.
func New(project, region string) *Client {
	return &Client{Binary: "gcloud", Project: project, Region: region}
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	if c.Project != "" {
		args = append(args, "--project", c.Project)
	}
	binary := c.Binary
	if binary == "" {
		binary = "gcloud"
	}

	logger.Debug("Running gcloud command.", "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gcloud %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ServiceURL resolves the serving URL of a Cloud Run service.
func (c *Client) ServiceURL(ctx context.Context, service string) (string, error) {
	out, err := c.run(ctx,
		"run", "services", "describe", service,
		"--region", c.Region,
		"--format", "value(status.url)",
	)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("cloud run service %q has no URL", service)
	}
	return out, nil
}

// SQLInstanceIP finds a Cloud SQL instance whose name matches the filter and
// returns its primary IP address.
func (c *Client) SQLInstanceIP(ctx context.Context, nameFilter string) (string, error) {
	name, err := c.run(ctx,
		"sql", "instances", "list",
		"--filter", fmt.Sprintf("name:%s", nameFilter),
		"--format", "value(name)",
		"--limit", "1",
	)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("no cloud sql instance matches filter %q", nameFilter)
	}

	ip, err := c.run(ctx,
		"sql", "instances", "describe", name,
		"--format", "value(ipAddresses[0].ipAddress)",
	)
	if err != nil {
		return "", err
	}
	if ip == "" {
		return "", fmt.Errorf("cloud sql instance %q has no IP address", name)
	}
	return ip, nil
}

// ProjectID reads the active project from gcloud config.
func ProjectID(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "gcloud", "config", "get-value", "project")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to read gcloud project: %w", err)
	}
	project := strings.TrimSpace(stdout.String())
	if project == "" || project == "(unset)" {
		return "", fmt.Errorf("no default gcloud project configured")
	}
	return project, nil
}
