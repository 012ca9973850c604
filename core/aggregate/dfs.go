package aggregate

import (
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
)

// BackEdges records, per child package identity, the marker contributed
// by each parent package identity — already reduced by
// graph.BackEdgeMarker's root/non-root stripping rule.
type BackEdges map[string]map[string]markers.Marker

// walkState threads the mutable bookkeeping the recursive walk needs,
// mirroring the free-function dfs_visit(node, back_edges, visited,
// sorted_nodes, markers) this is grounded on.
type walkState struct {
	g         *graph.Graph
	visited   map[string]graph.NodeIndex
	order     []graph.NodeIndex
	backEdges BackEdges
	parentsOf map[graph.NodeIndex][]graph.NodeIndex
}

// Walk performs a cyclic pre-order DFS: every reachable (identity,
// group-set, optional) node is visited exactly once via a key-based
// visited set (tolerating cycles without detecting them), each edge is
// recorded in the back-edge marker table, and the resulting order places
// parents before children when the graph is acyclic. Once the walk
// completes, every node's depth is computed via the recurrence below.
func Walk(g *graph.Graph) (order []graph.NodeIndex, backEdges BackEdges, err error) {
	st := &walkState{
		g:         g,
		visited:   map[string]graph.NodeIndex{g.Node(g.Root).Key(): g.Root},
		backEdges: BackEdges{},
		parentsOf: map[graph.NodeIndex][]graph.NodeIndex{},
	}
	if err := st.visit(g.Root); err != nil {
		return nil, nil, err
	}
	computeDepths(g, st.order, st.parentsOf)
	return st.order, st.backEdges, nil
}

func (st *walkState) visit(idx graph.NodeIndex) error {
	edges, err := st.g.Edges(idx)
	if err != nil {
		return err
	}
	isRoot := st.g.IsRoot(idx)
	parentNode := st.g.Node(idx)
	parentKey := parentNode.Pkg.ID.Key()

	for _, e := range edges {
		childGroups, childOptional := graph.ChildContext(parentNode, e.Dep, isRoot)
		childKey := graph.NodeKey(e.Target.ID, childGroups, childOptional)
		childIdx, existed := st.visited[childKey]
		if !existed {
			childIdx, err = st.g.AddNode(e.Target, &e.Dep, childGroups, childOptional)
			if err != nil {
				return err
			}
			st.visited[childKey] = childIdx
		}

		targetKey := e.Target.ID.Key()
		if st.backEdges[targetKey] == nil {
			st.backEdges[targetKey] = map[string]markers.Marker{}
		}
		st.backEdges[targetKey][parentKey] = graph.BackEdgeMarker(e.Marker, isRoot)
		st.parentsOf[childIdx] = append(st.parentsOf[childIdx], idx)

		if !existed {
			if err := st.visit(childIdx); err != nil {
				return err
			}
		}
	}

	st.order = append([]graph.NodeIndex{idx}, st.order...)
	return nil
}

// computeDepths applies the depth recurrence to every node in the order
// the walk produced: `depth(child) = 1 + max(depth(p) for p in
// parents, with self-name parents counted as depth(p)-1)`. The root has
// no parents, so it resolves to depth -1 without a special case.
func computeDepths(g *graph.Graph, order []graph.NodeIndex, parentsOf map[graph.NodeIndex][]graph.NodeIndex) {
	for _, idx := range order {
		n := g.Node(idx)
		best := -2
		for _, parentIdx := range parentsOf[idx] {
			p := g.Node(parentIdx)
			d := p.Depth
			if p.Pkg.ID.Name == n.Pkg.ID.Name {
				d--
			}
			if d > best {
				best = d
			}
		}
		n.Depth = 1 + best
	}
}
