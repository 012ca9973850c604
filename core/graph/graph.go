package graph

import (
	"strings"

	"github.com/evanlloyd/depwalk/core/markers"
	"github.com/evanlloyd/depwalk/version"
)

// NodeIndex addresses a Node within a Graph's arena. An arena of
// integer-indexed nodes avoids direct ownership pointers so that cycles in
// the dependency graph carry no ownership hazard; Children and Parents
// below are index lists rather than pointers for exactly that reason.
type NodeIndex int

// Node is one (package, group-set, optional-flag) visit recorded in the
// graph's arena. The same Package can own several Nodes: the traversal's
// node key is (package identity, group set, optional flag), so two
// traversals reaching the same package under different group contexts are
// distinct nodes that must both be retained.
type Node struct {
	Index    NodeIndex
	Pkg      *Package
	Groups   []string
	Optional bool

	// Depth is populated by core/aggregate as it walks the graph; the Graph
	// Builder itself only ever appends new nodes. Neither package fills in
	// Children or Parents: the walk keeps its own per-node parent lists.
	Depth    int
	Children []NodeIndex
	Parents  []NodeIndex
}

// Key is the DFS visited-set key: collapsing it to package identity alone
// (dropping group-set/optional) would silently merge distinct group
// contexts, corrupting the group union.
func (n *Node) Key() string {
	return NodeKey(n.Pkg.ID, n.Groups, n.Optional)
}

// NodeKey builds the same key as Node.Key without requiring a
// constructed Node, so core/aggregate can look up a prospective child's
// visited-set membership before deciding whether to add it to the arena.
func NodeKey(id PackageID, groups []string, optional bool) string {
	var b strings.Builder
	b.WriteString(id.Key())
	b.WriteByte('|')
	b.WriteString(strings.Join(groups, ","))
	b.WriteByte('|')
	if optional {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	return b.String()
}

// Graph is the arena-of-nodes plus the flat package list it was built
// from: a source node wrapping the root project, generalized to hold
// every node the traversal visits rather than only the root.
type Graph struct {
	Nodes []*Node
	Root  NodeIndex

	flat   []*Package
	byName map[string][]*Package
}

// NewGraph indexes the flat package list by name and seats the root at
// index 0. The root has no predecessor, so its group-set is empty and it
// is (vacuously) optional.
func NewGraph(root *Package, flat []*Package) *Graph {
	byName := make(map[string][]*Package, len(flat))
	for _, p := range flat {
		byName[p.ID.Name] = append(byName[p.ID.Name], p)
	}
	g := &Graph{flat: flat, byName: byName}
	rootNode := &Node{Pkg: root, Groups: nil, Optional: true, Depth: -1}
	g.Nodes = append(g.Nodes, rootNode)
	rootNode.Index = 0
	g.Root = 0
	return g
}

// IsRoot reports whether idx addresses the graph's root node.
func (g *Graph) IsRoot(idx NodeIndex) bool { return idx == g.Root }

// AddNode appends a node to the arena and returns its index. dep is the
// dependency that produced it; it must be non-nil for every node except
// the root — constructing a child without a dependency is a programming
// error. groups and optional are the node's resolved group-set and
// optional flag, as computed by ChildContext — not necessarily dep's own,
// since a node deeper than the root inherits its parent's propagated
// context rather than its immediate dependency's.
func (g *Graph) AddNode(pkg *Package, dep *Dependency, groups []string, optional bool) (NodeIndex, error) {
	if dep == nil {
		return -1, &ErrInvalidState{Reason: "child node " + pkg.ID.Key() + " constructed without a dependency"}
	}
	n := &Node{
		Pkg:      pkg,
		Groups:   append([]string(nil), groups...),
		Optional: optional,
	}
	idx := NodeIndex(len(g.Nodes))
	n.Index = idx
	g.Nodes = append(g.Nodes, n)
	return idx, nil
}

// ChildContext computes the group-set and optional flag a new child node
// inherits when reached via dep from parent. The root has no group-set of
// its own, so its immediate children take the dependency's own
// groups/optional. Every deeper edge instead propagates the parent node's
// already-resolved context straight through: a package pulled in under a
// non-main group, or behind an optional dependency, carries that
// membership down its entire subtree regardless of how each intermediate
// dependency along the way happens to be declared.
func ChildContext(parent *Node, dep Dependency, parentIsRoot bool) ([]string, bool) {
	if parentIsRoot {
		return dep.Groups, dep.Optional
	}
	return parent.Groups, parent.Optional
}

// Node returns the node at idx.
func (g *Graph) Node(idx NodeIndex) *Node { return g.Nodes[idx] }

// Edge is one outgoing edge discovered by Edges: the dependency that
// produced it, the candidate package it resolves to, and the
// root-adjusted edge marker.
type Edge struct {
	Dep    Dependency
	Target *Package
	Marker markers.Marker
}

// Edges lazily enumerates node idx's outgoing edges: for every dependency
// the node's package declares, every package in the flat list whose
// identity matches the dependency's target name and whose version
// satisfies its constraint becomes a candidate child.
func (g *Graph) Edges(idx NodeIndex) ([]Edge, error) {
	n := g.Nodes[idx]
	isRoot := g.IsRoot(idx)
	var edges []Edge
	for _, dep := range n.Pkg.AllRequires() {
		candidates := g.byName[dep.TargetName]
		rng, err := version.ParseVersionRange(dep.Constraint)
		if err != nil {
			return nil, &ErrInvalidState{Reason: "dependency on " + dep.TargetName + " has unparseable constraint " + dep.Constraint + ": " + err.Error()}
		}
		for _, candidate := range candidates {
			v, err := version.Parse(candidate.ID.Version)
			if err != nil {
				continue
			}
			if !rng.Satisfies(v) {
				continue
			}
			edges = append(edges, Edge{
				Dep:    dep,
				Target: candidate,
				Marker: EdgeMarker(dep, isRoot),
			})
		}
	}
	return edges, nil
}

// EdgeMarker computes the marker assigned to a child edge: the
// dependency's own marker, intersected — only when the parent is the
// root — with the disjunction `extra == "X1" or extra == "X2" …` built
// from the dependency's InExtras.
func EdgeMarker(dep Dependency, parentIsRoot bool) markers.Marker {
	m := dep.Marker
	if parentIsRoot && len(dep.InExtras) > 0 {
		disjunct := markers.Empty
		for _, extra := range dep.InExtras {
			disjunct = disjunct.Union(markers.NewComparison("extra", markers.Eq, extra))
		}
		m = m.Intersect(disjunct)
	}
	return m
}

// BackEdgeMarker derives the marker stored in the back-edge table: the
// edge marker with WithoutExtras applied, unless the parent is the root —
// whose own extras-activation context must survive into the child, since
// it describes a real constraint on the consumer rather than an artifact
// of the traversal.
func BackEdgeMarker(edgeMarker markers.Marker, parentIsRoot bool) markers.Marker {
	if parentIsRoot {
		return edgeMarker
	}
	return edgeMarker.WithoutExtras()
}
