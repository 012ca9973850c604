package solve

import (
	"github.com/evanlloyd/depwalk/core/aggregate"
	"github.com/evanlloyd/depwalk/core/graph"
)

// Transaction is Solve's output: the root project, every package its
// transitive closure resolved to (Solved), the per-package aggregated
// info the fixed point produced (Infos), and the subset that actually
// needs installing once optional-only packages are excluded.
type Transaction struct {
	Root      *graph.Package
	Solved    []*graph.Package
	Infos     map[string]*aggregate.Info
	Installed []*graph.Package
}

// Info looks up the aggregated depth/groups/markers for a resolved
// package by name and version.
func (t *Transaction) Info(name, version string) (*aggregate.Info, bool) {
	info, ok := t.Infos[graph.PackageID{Name: name, Version: version}.Key()]
	return info, ok
}
