// Package monitoring persists model predictions and drift reports in
// PostgreSQL and detects feature drift against a reference dataset.
package monitoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vk/stackctl/internal/ctxlog"
)

const (
	// PredictionWindow bounds how far back recent predictions are read.
	PredictionWindow = 7 * 24 * time.Hour
	// PredictionLimit caps the number of predictions used per drift run.
	PredictionLimit = 50
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS predictions (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	model_name TEXT NOT NULL,
	features JSONB NOT NULL,
	prediction DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS drift_reports (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	model_name TEXT NOT NULL,
	dataset_drift BOOLEAN NOT NULL,
	drift_share DOUBLE PRECISION NOT NULL,
	drifted_columns INTEGER NOT NULL,
	report JSONB NOT NULL
);
`

// Prediction is one logged model inference.
type Prediction struct {
	ID         int64
	CreatedAt  time.Time
	ModelName  string
	Features   map[string]any
	Prediction float64
}

// Store reads and writes monitoring rows.
type Store struct {
	db *sql.DB
}

// ConnConfig holds PostgreSQL connection settings.
type ConnConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the config as a lib/pq connection string.
func (c ConnConfig) DSN() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	database := c.Database
	if database == "" {
		database = "monitoring"
	}
	user := c.User
	if user == "" {
		user = "postgres"
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		host, port, database, user, c.Password, sslMode)
}

// Open connects to the database and sizes the pool for a small sidecar
// workload.
func Open(ctx context.Context, cfg ConnConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open monitoring database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach monitoring database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying pool for injection into step handlers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the monitoring tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if _, err := s.db.ExecContext(ctx, createTablesSQL); err != nil {
		return fmt.Errorf("failed to create monitoring tables: %w", err)
	}
	logger.Debug("Monitoring schema ensured.")
	return nil
}

// LogPrediction inserts one inference row.
func (s *Store) LogPrediction(ctx context.Context, modelName string, features map[string]any, prediction float64) error {
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (model_name, features, prediction) VALUES ($1, $2, $3)`,
		modelName, featuresJSON, prediction)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions reads the newest predictions for a model inside the
// drift window.
func (s *Store) RecentPredictions(ctx context.Context, modelName string) ([]Prediction, error) {
	since := time.Now().Add(-PredictionWindow)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, model_name, features, prediction
		 FROM predictions
		 WHERE model_name = $1 AND created_at >= $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		modelName, since, PredictionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var p Prediction
		var featuresJSON []byte
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.ModelName, &featuresJSON, &p.Prediction); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		if err := json.Unmarshal(featuresJSON, &p.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features for prediction %d: %w", p.ID, err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prediction rows: %w", err)
	}
	return predictions, nil
}

// LogDriftReport stores the outcome of one drift detection run.
func (s *Store) LogDriftReport(ctx context.Context, modelName string, report *Report) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode drift report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO drift_reports (model_name, dataset_drift, drift_share, drifted_columns, report)
		 VALUES ($1, $2, $3, $4, $5)`,
		modelName, report.DatasetDrift, report.DriftShare, report.DriftedColumns, reportJSON)
	if err != nil {
		return fmt.Errorf("failed to insert drift report: %w", err)
	}
	return nil
}
