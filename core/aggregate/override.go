package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// OverrideMarker computes the intersection, over every replacement
// dependency an override introduces, of that dependency's WithoutExtras
// marker.
func OverrideMarker(override map[string]map[string]graph.Dependency) markers.Marker {
	m := markers.Any
	for _, deps := range override {
		for _, dep := range deps {
			m = m.Intersect(dep.Marker.WithoutExtras())
		}
	}
	return m
}

// MergeOverride folds one override rerun's already-folded result
// (packages, infos) into the running accumulator: an existing package's
// depth/groups/markers are widened and any newly discovered dependency is
// appended; a package seen for the first time has its markers intersected
// with overrideMarker before being added.
func MergeOverride(acc map[string]*Accumulated, packages []*graph.Package, infos map[string]*Info, overrideMarker markers.Marker) {
	for _, pkg := range packages {
		key := pkg.ID.Key()
		info := infos[key]
		if existing, ok := acc[key]; ok {
			if info.Depth > existing.Info.Depth {
				existing.Info.Depth = info.Depth
			}
			existing.Info.Groups = unionStrings(existing.Info.Groups, info.Groups)
			if existing.Info.Markers == nil {
				existing.Info.Markers = make(map[string]markers.Marker)
			}
			for g, m := range info.Markers {
				prev, ok := existing.Info.Markers[g]
				if !ok {
					prev = markers.Empty
				}
				existing.Info.Markers[g] = prev.Union(overrideMarker.Intersect(m))
			}
			for _, dep := range pkg.Requires {
				if findEqualDependency(existing.Pkg.Requires, dep) < 0 {
					existing.Pkg.Requires = append(existing.Pkg.Requires, dep)
				}
			}
		} else {
			merged := make(map[string]markers.Marker, len(info.Markers))
			for g, m := range info.Markers {
				merged[g] = overrideMarker.Intersect(m)
			}
			acc[key] = &Accumulated{
				Pkg:  pkg,
				Info: &Info{Depth: info.Depth, Groups: append([]string(nil), info.Groups...), Markers: merged},
			}
		}
	}
}
