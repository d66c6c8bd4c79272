package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stackctl/internal/tfstate"
)

const infraStateV4 = `{
  "version": 4,
  "terraform_version": "1.9.0",
  "serial": 12,
  "lineage": "1f2d3c4b",
  "outputs": {
    "project_id": {"value": "mlops-churn", "type": "string"},
    "region": {"value": "europe-west1", "type": "string"},
    "bucket_name": {"value": "mlops-churn-artifacts", "type": "string"},
    "service_account_email": {"value": "runner@mlops-churn.iam.gserviceaccount.com", "type": "string"},
    "max_instances": {"value": 3, "type": "number"},
    "db_settings": {"value": {"tier": "db-f1-micro"}, "type": ["object", {"tier": "string"}]}
  }
}`

func TestStateEnvValues(t *testing.T) {
	state, err := tfstate.Parse([]byte(infraStateV4))
	require.NoError(t, err)

	values := stateEnvValues(state)
	assert.Equal(t, "mlops-churn", values["PROJECT_ID"])
	assert.Equal(t, "europe-west1", values["REGION"])
	assert.Equal(t, "mlops-churn-artifacts", values["BUCKET_NAME"])
	assert.Equal(t, "runner@mlops-churn.iam.gserviceaccount.com", values["SERVICE_ACCOUNT_EMAIL"])
	assert.Equal(t, "3", values["MAX_INSTANCES"])

	// Compound outputs have no flat env representation.
	assert.NotContains(t, values, "DB_SETTINGS")
}

func TestLoadExistingEnv_MissingFileIsEmpty(t *testing.T) {
	base, err := loadExistingEnv(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Empty(t, base)
}

func TestLoadExistingEnv_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.cloud")
	require.NoError(t, os.WriteFile(path, []byte("NOT A VALID LINE\n"), 0o600))

	_, err := loadExistingEnv(path)
	require.Error(t, err)
}

func TestLoadExistingEnv_KeepsExistingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.cloud")
	require.NoError(t, os.WriteFile(path, []byte("MLFLOW_URL=https://mlflow.example\n"), 0o600))

	base, err := loadExistingEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mlflow.example", base["MLFLOW_URL"])
}
