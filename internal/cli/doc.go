// Package cli defines the Cobra command tree for csprojgen. Each file in
// this package registers one top-level command (generate, diff, plan, etc.)
// with the root command. Commands delegate to internal packages for the
// actual work and only handle flag parsing and output formatting.
package cli
