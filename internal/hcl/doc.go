// Package hcl implements the HCL-backed config.Loader and config.Converter.
// It parses stack files and module manifests, translates them into the
// format-agnostic config model, and binds evaluated HCL expressions to the
// Go input structs of runner modules.
package hcl
