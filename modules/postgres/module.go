// Package postgres provides a stateful monitoring database asset. The
// resource is a live *monitoring.Store backed by a small connection pool,
// shared by drift-check steps.
package postgres

import (
	"reflect"

	"github.com/vk/stackctl/internal/monitoring"
	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the asset handlers and interface with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreatePostgres", &registry.RegisteredAsset{
		NewInput:  func() any { return new(AssetInput) },
		InputType: reflect.TypeOf(AssetInput{}),
		CreateFn:  createPostgres,
	})
	r.RegisterAssetHandler("DestroyPostgres", &registry.RegisteredAsset{
		DestroyFn: destroyPostgres,
	})
	r.RegisterAssetInterface("postgres", reflect.TypeOf((*monitoring.Store)(nil)))
}
