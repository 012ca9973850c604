package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// unionStrings returns the insertion-ordered union of a and b: every
// internal set-like container here preserves insertion order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// sameKeys reports whether m's key set equals groups, i.e. whether a
// package's markers map is "complete" for the fixed-point convergence
// check (`p.groups != set(p.markers.keys())`).
func sameKeys(groups []string, m map[string]markers.Marker) bool {
	if len(groups) != len(m) {
		return false
	}
	for _, g := range groups {
		if _, ok := m[g]; !ok {
			return false
		}
	}
	return true
}

// findEqualDependency returns the index of the first dependency in deps
// equal to d under the duplicate-suppression key (target + constraint +
// marker), or -1.
func findEqualDependency(deps []graph.Dependency, d graph.Dependency) int {
	for i, existing := range deps {
		if existing.Equal(d) {
			return i
		}
	}
	return -1
}
