// Package aggregate implements the cyclic DFS and reverse-order walk, the
// depth/group combiner, the per-group marker fixed point, the
// override-rerun merger, and feature-package folding that together turn a
// graph.Graph into the final transitive result.
package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// Info is a package's transitive-dependency summary: depth, the union of
// groups that transitively require the package, and the per-group marker
// the fixed point fills in.
type Info struct {
	Depth   int
	Groups  []string
	Markers map[string]markers.Marker
}

// Accumulated pairs a package with its Info while override reruns are
// being merged: the package's Requires can grow across reruns as later
// overrides surface dependencies earlier runs never saw.
type Accumulated struct {
	Pkg  *graph.Package
	Info *Info
}
