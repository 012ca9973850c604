package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// ComputeMarkers runs a cycle-tolerant fixed point: for each non-root
// package and each group it belongs to, accumulate the
// union, over every parent's edge, of that parent's own per-group marker
// intersected with the edge marker. A parent whose own markers aren't yet
// complete (because it sits in a cycle still being resolved) is skipped
// for this pass and the outer loop is marked incomplete so it runs again.
//
// infos must include an entry for the root (empty Groups triggers the
// root's direct-edge-marker branch) as well as every other combined
// package, keyed by graph.PackageID.Key().
func ComputeMarkers(infos map[string]*Info, backEdges BackEdges) error {
	byDepth := make(map[int][]string)
	maxDepth := -1
	for key, info := range infos {
		if info.Depth > maxDepth {
			maxDepth = info.Depth
		}
		byDepth[info.Depth] = append(byDepth[info.Depth], key)
	}

	// Divergence guard: the marker lattice is finite-height, so a
	// well-formed input converges in a bounded number of outer iterations.
	maxIterations := len(infos)*len(infos) + 64
	iterations := 0

	incomplete := true
	for incomplete {
		incomplete = false
		iterations++
		if iterations > maxIterations {
			return &graph.ErrInvalidState{Reason: "marker fixed-point failed to converge"}
		}
		for depth := 0; depth <= maxDepth; depth++ {
			for _, key := range byDepth[depth] {
				info := infos[key]
				tm := make(map[string]markers.Marker, len(info.Groups))
				for _, g := range info.Groups {
					tm[g] = markers.Empty
				}
				for parentKey, edgeMarker := range backEdges[key] {
					parentInfo, ok := infos[parentKey]
					if !ok {
						continue
					}
					if len(parentInfo.Groups) > 0 {
						if !sameKeys(parentInfo.Groups, parentInfo.Markers) {
							incomplete = true
							continue
						}
						for _, g := range parentInfo.Groups {
							tm[g] = tm[g].Union(parentInfo.Markers[g].Intersect(edgeMarker))
						}
					} else {
						// Root: no group context of its own, so every
						// group of the child inherits the edge marker
						// directly.
						for _, g := range info.Groups {
							tm[g] = tm[g].Union(edgeMarker)
						}
					}
				}
				info.Markers = tm
			}
		}
	}
	return nil
}
