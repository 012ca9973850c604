package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// Combine buckets every DFS-visited node by its full package identity (so
// the several nodes created for the same package under different
// group/optional contexts collapse into one record), then computes
// `depth := max over nodes`, `groups := union`, and `optional :=
// all-optional`, back-propagating the aggregated depth and optional flag
// into every node in the bucket and into the package itself. The returned
// package order preserves the walk's topological order, extracting each
// bucket at the position of its first representative.
func Combine(g *graph.Graph, order []graph.NodeIndex) ([]*graph.Package, map[string]*Info) {
	bucketOrder := make([]string, 0)
	buckets := make(map[string][]graph.NodeIndex)
	pkgByKey := make(map[string]*graph.Package)

	for _, idx := range order {
		n := g.Node(idx)
		key := n.Pkg.ID.Key()
		if _, ok := buckets[key]; !ok {
			bucketOrder = append(bucketOrder, key)
			pkgByKey[key] = n.Pkg
		}
		buckets[key] = append(buckets[key], idx)
	}

	packages := make([]*graph.Package, 0, len(bucketOrder))
	infos := make(map[string]*Info, len(bucketOrder))
	for _, key := range bucketOrder {
		nodeIdxs := buckets[key]
		maxDepth := g.Node(nodeIdxs[0]).Depth
		optional := true
		var groups []string
		for _, idx := range nodeIdxs {
			n := g.Node(idx)
			if n.Depth > maxDepth {
				maxDepth = n.Depth
			}
			if !n.Optional {
				optional = false
			}
			groups = unionStrings(groups, n.Groups)
		}
		for _, idx := range nodeIdxs {
			n := g.Node(idx)
			n.Depth = maxDepth
			n.Optional = optional
		}

		pkg := pkgByKey[key]
		pkg.Optional = optional
		packages = append(packages, pkg)
		infos[key] = &Info{Depth: maxDepth, Groups: groups, Markers: map[string]markers.Marker{}}
	}
	return packages, infos
}
