package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk/stackctl/internal/monitoring"
)

// newDriftCmd runs drift detection against the monitoring database outside
// of a stack run.
func newDriftCmd(opts *globalOpts) *cobra.Command {
	var (
		conn        monitoring.ConnConfig
		modelName   string
		reference   string
		failOnDrift bool
	)

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare recent predictions against reference data and store a drift report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelName == "" {
				return usageErrorf("--model is required")
			}
			if reference == "" {
				return usageErrorf("--reference is required")
			}

			ctx := cmd.Context()
			referenceData, err := monitoring.LoadReferenceCSV(reference)
			if err != nil {
				return failuref("%v", err)
			}

			store, err := monitoring.Open(ctx, conn)
			if err != nil {
				return failuref("%v", err)
			}
			defer store.Close()

			if err := store.EnsureSchema(ctx); err != nil {
				return failuref("%v", err)
			}

			predictions, err := store.RecentPredictions(ctx, modelName)
			if err != nil {
				return failuref("%v", err)
			}

			current := monitoring.DatasetFromPredictions(referenceData, predictions)
			report, err := monitoring.Detect(referenceData, current, len(predictions))
			if err != nil {
				return failuref("%v", err)
			}
			if err := store.LogDriftReport(ctx, modelName, report); err != nil {
				return failuref("%v", err)
			}

			fmt.Fprintf(opts.outW, "Model %s: %d of %d columns drifted (share %.2f, sample %d)\n",
				modelName, report.DriftedColumns, report.TotalColumns, report.DriftShare, report.SampleSize)
			if report.DatasetDrift {
				fmt.Fprintln(opts.outW, "Dataset drift: DETECTED")
				if failOnDrift {
					return failuref("dataset drift detected for model %s", modelName)
				}
			} else {
				fmt.Fprintln(opts.outW, "Dataset drift: none")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&conn.Host, "host", "localhost", "monitoring database host")
	cmd.Flags().IntVar(&conn.Port, "port", 5432, "monitoring database port")
	cmd.Flags().StringVar(&conn.Database, "database", "monitoring", "monitoring database name")
	cmd.Flags().StringVar(&conn.User, "user", "postgres", "monitoring database user")
	cmd.Flags().StringVar(&conn.Password, "password", "", "monitoring database password")
	cmd.Flags().StringVar(&conn.SSLMode, "sslmode", "disable", "libpq sslmode for the database connection")
	cmd.Flags().StringVar(&modelName, "model", "", "model whose predictions are checked")
	cmd.Flags().StringVar(&reference, "reference", "", "CSV file with the reference dataset")
	cmd.Flags().BoolVar(&failOnDrift, "fail-on-drift", false, "exit non-zero when dataset drift is detected")
	return cmd
}
