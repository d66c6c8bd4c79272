package postgres

import (
	"context"

	"github.com/vk/stackctl/internal/monitoring"
)

// AssetInput defines the arguments for creating a postgres resource.
type AssetInput struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	Database string `hcl:"database,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional"`
	SSLMode  string `hcl:"ssl_mode,optional"`
}

// createPostgres is the 'create' handler for the asset. It opens the pool,
// verifies connectivity and ensures the monitoring schema exists.
func createPostgres(ctx context.Context, input *AssetInput) (*monitoring.Store, error) {
	store, err := monitoring.Open(ctx, monitoring.ConnConfig{
		Host:     input.Host,
		Port:     input.Port,
		Database: input.Database,
		User:     input.User,
		Password: input.Password,
		SSLMode:  input.SSLMode,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// destroyPostgres is the 'destroy' handler for the asset.
func destroyPostgres(store *monitoring.Store) error {
	return store.Close()
}
