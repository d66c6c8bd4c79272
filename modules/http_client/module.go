// Package http_client provides a stateful, shareable HTTP client asset used
// by health-check steps so that probes against multiple endpoints reuse one
// connection pool.
package http_client

import (
	"reflect"

	"resty.dev/v3"

	"github.com/vk/stackctl/internal/registry"
)

// Module implements the registry.Module interface.
type Module struct{}

// Register registers the asset handlers and interface with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateHttpClient", &registry.RegisteredAsset{
		NewInput:  func() any { return new(AssetInput) },
		InputType: reflect.TypeOf(AssetInput{}),
		CreateFn:  createHttpClient,
	})
	r.RegisterAssetHandler("DestroyHttpClient", &registry.RegisteredAsset{
		DestroyFn: destroyHttpClient,
	})
	r.RegisterAssetInterface("http_client", reflect.TypeOf((*resty.Client)(nil)))
}
