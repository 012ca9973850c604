// Package solve wires core/graph and core/aggregate into the external
// contract a version solver and its caller use: Provider supplies the
// flat package list and override directives, Solve drives the
// DFS/combine/fixed-point/override/fold pipeline to a Transaction.
package solve

import (
	"context"

	"github.com/evanlloyd/depwalk/core/graph"
)

// VersionSolver is the external SAT/PubGrub-style solver this package
// consumes but never implements: it is handed a root package and
// returns the flat list of resolved packages the aggregation core then
// walks.
type VersionSolver interface {
	ResolveVersions(ctx context.Context, root *graph.Package) ([]*graph.Package, error)
}

// Provider supplies everything a Solve call needs beyond the raw
// version-solver output: override directives, latest-version pins, the
// target environment, and a debug sink. A concrete example
// implementation backed by an HTTP package feed lives in
// provider/httpprovider.
type Provider interface {
	// SetOverrides records replacement dependencies keyed by the
	// overridden package name, then by the package that declared the
	// original dependency — matching graph.Dependency's own shape so an
	// override rerun can resolve each replacement directly.
	SetOverrides(overrides map[string]map[string]graph.Dependency)

	// UseLatestFor pins a set of package names to their latest
	// available version for the duration of one Solve call.
	UseLatestFor(names []string)

	// UseEnvironment sets the concrete environment-variable values (for
	// example python_version, sys_platform) the final markers are
	// reported against; an empty map leaves markers unevaluated.
	UseEnvironment(env map[string]string)

	// IsDebugging reports whether verbose solver diagnostics should be
	// collected.
	IsDebugging() bool

	// Debug emits a diagnostic line when IsDebugging is true; a no-op
	// otherwise.
	Debug(format string, args ...any)

	// Solver returns the VersionSolver this provider resolves package
	// versions through.
	Solver() VersionSolver

	// PythonConstraint returns the project's own interpreter constraint,
	// the pythonConstraint argument the Marker Simplifier reduces
	// against.
	PythonConstraint() string

	// Overrides returns the override directives currently recorded via
	// SetOverrides, or nil if none were set.
	Overrides() map[string]map[string]graph.Dependency
}
