package drift_check

import (
	"context"

	"github.com/vk/stackctl/internal/ctxlog"
	"github.com/vk/stackctl/internal/monitoring"
)

// RunnerInput defines the arguments for the drift_check runner.
type RunnerInput struct {
	ModelName     string `hcl:"model_name"`
	ReferencePath string `hcl:"reference_path"`
	FailOnDrift   bool   `hcl:"fail_on_drift,optional"`
}

// RunnerDeps declares the monitoring database resource this runner uses.
type RunnerDeps struct {
	Store *monitoring.Store `hcl:"store"`
}

// onRunDriftCheck loads reference data, reads recent predictions, runs drift
// detection and persists the report.
func onRunDriftCheck(ctx context.Context, deps *RunnerDeps, input *RunnerInput) (any, error) {
	logger := ctxlog.FromContext(ctx).With("model", input.ModelName)

	reference, err := monitoring.LoadReferenceCSV(input.ReferencePath)
	if err != nil {
		return nil, err
	}

	predictions, err := deps.Store.RecentPredictions(ctx, input.ModelName)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded recent predictions.", "count", len(predictions))

	current := monitoring.DatasetFromPredictions(reference, predictions)
	report, err := monitoring.Detect(reference, current, len(predictions))
	if err != nil {
		return nil, err
	}

	if err := deps.Store.LogDriftReport(ctx, input.ModelName, report); err != nil {
		return nil, err
	}

	if report.DatasetDrift {
		logger.Warn("Dataset drift detected.",
			"drift_share", report.DriftShare,
			"drifted_columns", report.DriftedColumns)
		if input.FailOnDrift {
			return nil, errDatasetDrift(input.ModelName, report)
		}
	} else {
		logger.Info("No dataset drift detected.", "drift_share", report.DriftShare)
	}

	return map[string]any{
		"dataset_drift":   report.DatasetDrift,
		"drift_share":     report.DriftShare,
		"drifted_columns": report.DriftedColumns,
		"sample_size":     report.SampleSize,
	}, nil
}
