// Package graph builds the keyed dependency graph: a source node wrapping
// the root project plus a flat list of packages a version solver has
// already chosen, exposing the edges each node reaches without committing
// to how those edges get walked (that is core/aggregate's job).
package graph

import (
	"sort"
	"strings"

	"github.com/evanlloyd/depwalk/core/markers"
)

// PackageID identifies a package by name, version, and the (possibly
// empty) set of activated extras. Two packages with the same
// name+version but different Features are distinct nodes; the
// features-less one is the base.
type PackageID struct {
	Name     string
	Version  string
	Features []string
}

// Key returns a stable, comparable identity string. Features are sorted so
// two PackageIDs built with the same set in different orders collide.
func (id PackageID) Key() string {
	if len(id.Features) == 0 {
		return id.Name + "@" + id.Version
	}
	sorted := append([]string(nil), id.Features...)
	sort.Strings(sorted)
	return id.Name + "@" + id.Version + "[" + strings.Join(sorted, ",") + "]"
}

// IsBase reports whether this identity carries no activated extras.
func (id PackageID) IsBase() bool { return len(id.Features) == 0 }

// Dependency is the immutable record of one requirement: a target name, a
// version constraint, an environment marker (defaulting to the tautology),
// a group-set, an optional flag, and the root extras that introduced it.
type Dependency struct {
	TargetName string
	Constraint string // parsed on demand via version.ParseVersionRange
	Marker     markers.Marker
	Groups     []string
	Optional   bool
	InExtras   []string
}

// Equal reports whether two dependencies are duplicate-suppression equal:
// same target and constraint, and an equal marker. Groups and optionality
// do NOT participate — see DESIGN.md for why that's preserved rather than
// fixed.
func (d Dependency) Equal(other Dependency) bool {
	return d.TargetName == other.TargetName &&
		d.Constraint == other.Constraint &&
		d.Marker.Equal(other.Marker)
}

// Package is a node's payload: its identity plus the dependencies it
// declares (AllRequires).
type Package struct {
	ID       PackageID
	Requires []Dependency
	// Optional is set by the depth/group aggregator; the graph builder
	// never reads or writes it.
	Optional bool
}

// AllRequires returns every dependency this package declares, in
// insertion order: iteration order must stay stable throughout the
// aggregation pipeline.
func (p *Package) AllRequires() []Dependency { return p.Requires }
