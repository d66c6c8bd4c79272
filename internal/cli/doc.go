// Package cli wires the stackctl command tree. Each subcommand builds its
// configuration from flags and delegates to the app or to the relevant
// internal package; exit codes are communicated through ExitError.
package cli
