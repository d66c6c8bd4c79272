package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vk/stackctl/internal/envfile"
	"github.com/vk/stackctl/internal/gcloudcli"
	"github.com/vk/stackctl/internal/tfstate"
)

// newEnvCmd groups env file maintenance commands.
func newEnvCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Maintain deployment env files",
	}
	cmd.AddCommand(newEnvUpdateCmd(opts))
	return cmd
}

// newEnvUpdateCmd rewrites a dotenv file with addresses resolved from the
// live deployment: infrastructure outputs read from Terraform remote state,
// Cloud Run service URLs, and the Cloud SQL instance IP.
func newEnvUpdateCmd(opts *globalOpts) *cobra.Command {
	var (
		file        string
		project     string
		region      string
		services    []string
		sqlFilter   string
		sqlKey      string
		stateBucket string
		statePrefix string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh an env file with live service URLs and infrastructure outputs",
		Long: `Resolve the URL of each named Cloud Run service, optionally the IP of a
Cloud SQL instance, and optionally the infrastructure module's Terraform
outputs from its remote state in GCS, then rewrite the env file with those
values. Service mappings are given as ENV_KEY=service-name pairs; state
outputs are written under their uppercased output name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return usageErrorf("--file is required")
			}
			if len(services) > 0 || sqlFilter != "" {
				if region == "" {
					return usageErrorf("--region is required with --service or --sql-filter")
				}
			}
			if len(services) == 0 && sqlFilter == "" && stateBucket == "" {
				return usageErrorf("nothing to resolve: pass --service, --sql-filter or --state-bucket")
			}

			ctx := cmd.Context()
			updates := make(map[string]string)

			if stateBucket != "" {
				backend, err := tfstate.NewGCSBackend(ctx, stateBucket)
				if err != nil {
					return failuref("%v", err)
				}
				defer backend.Close()
				state, err := backend.ReadState(ctx, statePrefix)
				if err != nil {
					return failuref("%v", err)
				}
				for key, value := range stateEnvValues(state) {
					updates[key] = value
				}
			}

			if len(services) > 0 || sqlFilter != "" {
				if project == "" {
					resolved, err := gcloudcli.ProjectID(ctx)
					if err != nil {
						return failuref("%v", err)
					}
					project = resolved
				}
				client := gcloudcli.New(project, region)

				for _, mapping := range services {
					envKey, service, ok := strings.Cut(mapping, "=")
					if !ok || envKey == "" || service == "" {
						return usageErrorf("invalid service mapping %q, expected ENV_KEY=service-name", mapping)
					}
					url, err := client.ServiceURL(ctx, service)
					if err != nil {
						return failuref("%v", err)
					}
					updates[envKey] = url
				}

				if sqlFilter != "" {
					ip, err := client.SQLInstanceIP(ctx, sqlFilter)
					if err != nil {
						return failuref("%v", err)
					}
					updates[sqlKey] = ip
				}
			}

			base, err := loadExistingEnv(file)
			if err != nil {
				return failuref("%v", err)
			}
			merged := envfile.Merge(base, updates)
			if err := envfile.Write(file, merged, time.Now()); err != nil {
				return failuref("%v", err)
			}

			fmt.Fprintf(opts.outW, "Updated %s with %d values.\n", file, len(updates))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "env file to rewrite")
	cmd.Flags().StringVar(&project, "project", "", "GCP project ID (defaults to gcloud config)")
	cmd.Flags().StringVar(&region, "region", "", "GCP region of the services")
	cmd.Flags().StringSliceVar(&services, "service", nil, "ENV_KEY=service-name mapping, repeatable")
	cmd.Flags().StringVar(&sqlFilter, "sql-filter", "", "name filter selecting the Cloud SQL instance")
	cmd.Flags().StringVar(&sqlKey, "sql-key", "POSTGRES_HOST", "env key receiving the SQL instance IP")
	cmd.Flags().StringVar(&stateBucket, "state-bucket", "", "GCS bucket holding the terraform remote state")
	cmd.Flags().StringVar(&statePrefix, "state-prefix", "", "state prefix of the infrastructure module")
	return cmd
}

// stateEnvValues maps a state document's scalar outputs to env file entries:
// the output name uppercased, e.g. project_id becomes PROJECT_ID. Outputs
// with compound values (objects, lists) are not representable in a flat env
// file and are left out.
func stateEnvValues(state *tfstate.State) map[string]string {
	values := make(map[string]string)
	decoded, err := state.OutputValues()
	if err != nil {
		return values
	}
	for name, value := range decoded {
		switch v := value.(type) {
		case string:
			values[strings.ToUpper(name)] = v
		case float64, bool:
			values[strings.ToUpper(name)] = fmt.Sprint(v)
		}
	}
	return values
}

// loadExistingEnv reads the current env file. A missing file yields an empty
// base; any other read or parse failure aborts the update so a corrupt file
// does not silently lose its keys on rewrite.
func loadExistingEnv(path string) (map[string]string, error) {
	existing, err := envfile.Parse(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return existing, nil
}
