package drift_check

import (
	"fmt"

	"github.com/vk/stackctl/internal/monitoring"
)

func errDatasetDrift(modelName string, report *monitoring.Report) error {
	return fmt.Errorf("model %q drifted: %d of %d columns over threshold (share %.2f)",
		modelName, report.DriftedColumns, report.TotalColumns, report.DriftShare)
}
