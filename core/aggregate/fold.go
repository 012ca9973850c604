package aggregate

import "github.com/evanlloyd/depwalk/core/graph"

// Fold merges every feature (extras-activated) variant in packages into
// its base package (same name+version, no activated extras) and then
// drops it from the result — only base packages appear in the output.
//
// A feature variant's dependency is skipped outright if it targets the
// base package itself (preventing a self-loop), and otherwise merged
// with duplicate suppression keyed on (target, constraint, marker)
// equality — resolved as documented in DESIGN.md: two deps with the same
// target but different markers carry different semantic payloads and
// both survive.
func Fold(packages []*graph.Package, infos map[string]*Info) ([]*graph.Package, map[string]*Info) {
	baseByIdentity := make(map[string]*graph.Package)
	for _, p := range packages {
		if p.ID.IsBase() {
			baseByIdentity[p.ID.Name+"@"+p.ID.Version] = p
		}
	}

	for _, p := range packages {
		if p.ID.IsBase() {
			continue
		}
		base, ok := baseByIdentity[p.ID.Name+"@"+p.ID.Version]
		if !ok {
			continue
		}
		for _, dep := range p.Requires {
			if dep.TargetName == base.ID.Name {
				continue
			}
			if findEqualDependency(base.Requires, dep) >= 0 {
				continue
			}
			base.Requires = append(base.Requires, dep)
		}
	}

	folded := make([]*graph.Package, 0, len(packages))
	foldedInfos := make(map[string]*Info, len(infos))
	for _, p := range packages {
		if !p.ID.IsBase() {
			continue
		}
		key := p.ID.Key()
		folded = append(folded, p)
		foldedInfos[key] = infos[key]
	}
	return folded, foldedInfos
}
