package aggregate

import (
	"testing"

	"github.com/evanlloyd/depwalk/core/graph"
)

// E4 — feature folding: root depends on a[speedups], which activates a
// feature variant of "a" requiring "c" only when that extra is active.
// The folded result must have one "a" package whose Requires includes
// "c", and no separate "a[speedups]" entry.
func TestE4_FeatureFolding(t *testing.T) {
	root := pkg("root", "0.0.0")
	aBase := pkg("a", "1.0.0")
	aFeature := pkg("a", "1.0.0", "speedups")
	c := pkg("c", "1.0.0")

	root.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}, InExtras: []string{"speedups"}},
	}
	aFeature.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}},
		{TargetName: "c", Constraint: "1.0.0", Groups: []string{"main"}},
	}

	g := graph.NewGraph(root, []*graph.Package{aBase, aFeature, c})
	order, backEdges, err := Walk(g)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	packages, infos := Combine(g, order)
	if err := ComputeMarkers(infos, backEdges); err != nil {
		t.Fatalf("ComputeMarkers() error = %v", err)
	}
	folded, foldedInfos := Fold(packages, infos)

	for _, p := range folded {
		if p.ID.Name == "a" && !p.ID.IsBase() {
			t.Fatalf("folded output still contains feature variant %v", p.ID)
		}
	}

	var aOut *graph.Package
	for _, p := range folded {
		if p.ID.Name == "a" {
			aOut = p
		}
	}
	if aOut == nil {
		t.Fatal("folded output missing base package a")
	}
	if findEqualDependency(aOut.Requires, graph.Dependency{TargetName: "c", Constraint: "1.0.0", Groups: []string{"main"}}) < 0 {
		t.Errorf("base a.Requires = %v, want dependency on c folded in", aOut.Requires)
	}
	for _, d := range aOut.Requires {
		if d.TargetName == "a" {
			t.Errorf("folded a.Requires contains a self-loop dependency: %+v", d)
		}
	}
	if _, ok := foldedInfos[graph.PackageID{Name: "a", Version: "1.0.0"}.Key()]; !ok {
		t.Errorf("foldedInfos missing entry for base package a")
	}
}

// E5 — duplicate dependency with different markers: two distinct feature
// variants each require "c" under a different marker; both must survive
// folding since (target, marker) differs.
func TestE5_DuplicateDependencyDifferentMarkersBothSurvive(t *testing.T) {
	root := pkg("root", "0.0.0")
	aBase := pkg("a", "1.0.0")
	fx := pkg("a", "1.0.0", "x")
	fy := pkg("a", "1.0.0", "y")
	c := pkg("c", "1.0.0")

	root.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}, InExtras: []string{"x", "y"}},
	}
	fx.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}},
		dep("c", "1.0.0", `sys_platform == "win32"`),
	}
	fy.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}},
		dep("c", "1.0.0", `sys_platform == "linux"`),
	}

	g := graph.NewGraph(root, []*graph.Package{aBase, fx, fy, c})
	order, backEdges, err := Walk(g)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	packages, infos := Combine(g, order)
	if err := ComputeMarkers(infos, backEdges); err != nil {
		t.Fatalf("ComputeMarkers() error = %v", err)
	}
	folded, _ := Fold(packages, infos)

	var aOut *graph.Package
	for _, p := range folded {
		if p.ID.Name == "a" {
			aOut = p
		}
	}
	if aOut == nil {
		t.Fatal("folded output missing base package a")
	}
	count := 0
	for _, d := range aOut.Requires {
		if d.TargetName == "c" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("a.Requires has %d dependencies on c, want 2 (distinct markers must both survive)", count)
	}
}

// A duplicate dependency with the SAME (target, constraint, marker) from
// two different feature variants must be folded in only once.
func TestFold_IdenticalDuplicateDependencyCollapses(t *testing.T) {
	root := pkg("root", "0.0.0")
	aBase := pkg("a", "1.0.0")
	fx := pkg("a", "1.0.0", "x")
	fy := pkg("a", "1.0.0", "y")
	c := pkg("c", "1.0.0")

	root.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}, InExtras: []string{"x", "y"}},
	}
	fx.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}},
		{TargetName: "c", Constraint: "1.0.0", Groups: []string{"main"}},
	}
	fy.Requires = []graph.Dependency{
		{TargetName: "a", Constraint: "1.0.0", Groups: []string{"main"}},
		{TargetName: "c", Constraint: "1.0.0", Groups: []string{"main"}},
	}

	g := graph.NewGraph(root, []*graph.Package{aBase, fx, fy, c})
	order, backEdges, err := Walk(g)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	packages, infos := Combine(g, order)
	if err := ComputeMarkers(infos, backEdges); err != nil {
		t.Fatalf("ComputeMarkers() error = %v", err)
	}
	folded, _ := Fold(packages, infos)

	var aOut *graph.Package
	for _, p := range folded {
		if p.ID.Name == "a" {
			aOut = p
		}
	}
	count := 0
	for _, d := range aOut.Requires {
		if d.TargetName == "c" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("a.Requires has %d dependencies on c, want 1 (identical duplicate must collapse)", count)
	}
}
