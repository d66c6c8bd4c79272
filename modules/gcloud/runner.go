package gcloud

import (
	"context"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/gcloudcli"
)

// RunnerInput defines the arguments for the gcloud runner.
type RunnerInput struct {
	Project   string `hcl:"project,optional"`
	Region    string `hcl:"region"`
	Service   string `hcl:"service,optional"`
	SQLFilter string `hcl:"sql_filter,optional"`
}

// RunnerDeps is empty because this runner shells out to the gcloud CLI.
type RunnerDeps struct{}

// onRunGcloud resolves the requested lookups and returns them as outputs.
// An empty service or sql_filter skips that lookup and leaves the output
// empty.
func onRunGcloud(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx)

	project := input.Project
	if project == "" {
		resolved, err := gcloudcli.ProjectID(ctx)
		if err != nil {
			return nil, err
		}
		project = resolved
	}

	client := gcloudcli.New(project, input.Region)
	outputs := map[string]any{
		"project": project,
		"url":     "",
		"ip":      "",
	}

	if input.Service != "" {
		url, err := client.ServiceURL(ctx, input.Service)
		if err != nil {
			return nil, err
		}
		outputs["url"] = url
		logger.Debug("Resolved service URL.", "service", input.Service, "url", url)
	}

	if input.SQLFilter != "" {
		ip, err := client.SQLInstanceIP(ctx, input.SQLFilter)
		if err != nil {
			return nil, err
		}
		outputs["ip"] = ip
		logger.Debug("Resolved SQL instance IP.", "filter", input.SQLFilter, "ip", ip)
	}

	return outputs, nil
}
