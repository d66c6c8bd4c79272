// Package config defines the format-agnostic model for a deployment stack:
// the steps and resources declared by the user, and the runner and asset
// definitions contributed by module manifests. Loaders translate a concrete
// configuration format (HCL) into this model; the rest of the engine only
// ever sees these types.
package config
