// Package registry holds the Go handlers behind runner and asset types, and
// validates them against the definitions loaded from module manifests.
package registry
