package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS predictions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogPrediction(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO predictions").
		WithArgs("churn", []byte(`{"tenure":12}`), 0.83).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogPrediction(context.Background(), "churn", map[string]any{"tenure": 12}, 0.83)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentPredictions(t *testing.T) {
	store, mock := newMockStore(t)

	createdAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "created_at", "model_name", "features", "prediction"}).
		AddRow(int64(2), createdAt, "churn", []byte(`{"tenure": 48, "contract": "yearly"}`), 0.12).
		AddRow(int64(1), createdAt.Add(-time.Hour), "churn", []byte(`{"tenure": 3, "contract": "monthly"}`), 0.91)

	mock.ExpectQuery("SELECT id, created_at, model_name, features, prediction").
		WithArgs("churn", sqlmock.AnyArg(), PredictionLimit).
		WillReturnRows(rows)

	predictions, err := store.RecentPredictions(context.Background(), "churn")
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.Equal(t, int64(2), predictions[0].ID)
	assert.Equal(t, "churn", predictions[0].ModelName)
	assert.Equal(t, 0.12, predictions[0].Prediction)
	assert.Equal(t, float64(48), predictions[0].Features["tenure"])
	assert.Equal(t, "yearly", predictions[0].Features["contract"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentPredictions_BadFeaturesJSON(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "created_at", "model_name", "features", "prediction"}).
		AddRow(int64(1), time.Now(), "churn", []byte(`{not json`), 0.5)

	mock.ExpectQuery("SELECT id, created_at, model_name, features, prediction").
		WithArgs("churn", sqlmock.AnyArg(), PredictionLimit).
		WillReturnRows(rows)

	_, err := store.RecentPredictions(context.Background(), "churn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode features")
}

func TestLogDriftReport(t *testing.T) {
	store, mock := newMockStore(t)

	report := &Report{
		DatasetDrift:   true,
		DriftShare:     0.75,
		DriftedColumns: 3,
		TotalColumns:   4,
		SampleSize:     50,
	}
	mock.ExpectExec("INSERT INTO drift_reports").
		WithArgs("churn", true, 0.75, 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogDriftReport(context.Background(), "churn", report)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnConfigDSN_Defaults(t *testing.T) {
	dsn := ConnConfig{Password: "secret"}.DSN()
	assert.Equal(t, "host=localhost port=5432 dbname=monitoring user=postgres password=secret sslmode=disable", dsn)
}

func TestConnConfigDSN_Explicit(t *testing.T) {
	dsn := ConnConfig{
		Host:     "10.1.2.3",
		Port:     5433,
		Database: "metrics",
		User:     "svc",
		Password: "x",
		SSLMode:  "require",
	}.DSN()
	assert.Equal(t, "host=10.1.2.3 port=5433 dbname=metrics user=svc password=x sslmode=require", dsn)
}
