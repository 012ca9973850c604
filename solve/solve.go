package solve

import (
	"context"
	"errors"

	"github.com/evanlloyd/depwalk/core/aggregate"
	"github.com/evanlloyd/depwalk/core/graph"
	"github.com/evanlloyd/depwalk/core/markers"
	"github.com/evanlloyd/depwalk/observability"
)

// maxOverrideAttempts bounds the override-retry loop: a version solver
// is expected to converge in a handful of reruns, so a runaway sequence
// of OverrideNeeded errors is treated as a solve failure rather than
// retried forever.
const maxOverrideAttempts = 16

// Solver drives one project's transitive dependency aggregation:
// resolve versions through the provider's VersionSolver, walk and
// combine the resulting graph, compute the per-group marker fixed
// point, fold feature variants into their base packages, and — if the
// version solver reports an OverrideNeeded — rerun the resolve under the
// provider's widened overrides until one pass succeeds, then merge that
// pass's result under the current override marker.
type Solver struct {
	log observability.Logger
}

// NewSolver creates a Solver. A nil logger defaults to a no-op sink.
func NewSolver(log observability.Logger) *Solver {
	if log == nil {
		log = observability.NewNullLogger()
	}
	return &Solver{log: log}
}

// Solve resolves root's transitive closure against provider and reduces
// every final marker against the project's interpreter constraint. Each
// OverrideNeeded from the version solver triggers another resolve under
// the provider's current overrides, up to maxOverrideAttempts in all. The
// first pass that succeeds is merged into an empty accumulator, intersected
// with the marker of the provider's current overrides, and returned; the
// results of separate override sets are not unioned, so exactly one
// resolve pass contributes to the Transaction. A pass that needed no
// override is merged the same way with markers.Any as its marker — see
// DESIGN.md for why this repo runs one code path instead of the
// upstream's override-only finalize step.
func (s *Solver) Solve(ctx context.Context, root *graph.Package, provider Provider) (txn *Transaction, err error) {
	ctx, span := observability.StartDependencyResolutionSpan(ctx, root.ID.Name)
	defer func() { observability.EndSpanWithError(span, err) }()

	acc := map[string]*aggregate.Accumulated{}
	overrideMarker := markers.Any
	var lastErr error

	for attempt := 0; attempt < maxOverrideAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Resolving under the provider's current overrides. On
		// OverrideNeeded, the provider is expected to have already
		// widened its own override set as a side effect of the failed
		// call (it owns the knowledge of what replacement resolves the
		// conflict); Solve only needs to read it back to recompute the
		// marker the next merge pass intersects against.
		flat, resolveErr := provider.Solver().ResolveVersions(ctx, root)
		if resolveErr != nil {
			var needed *OverrideNeeded
			if errors.As(resolveErr, &needed) {
				lastErr = needed
				s.log.Warn("override needed for {Package}: {Reason}", needed.Package, needed.Reason)
				observability.RecordRetry(ctx, attempt, needed)
				overrideMarker = aggregate.OverrideMarker(provider.Overrides())
				continue
			}
			return nil, &ErrSolverProblem{Package: root.ID.Name, Cause: resolveErr}
		}

		folded, foldedInfos, pipelineErr := s.runPipeline(root, flat)
		if pipelineErr != nil {
			return nil, pipelineErr
		}

		aggregate.MergeOverride(acc, folded, foldedInfos, overrideMarker)
		return s.finalize(root, acc, provider)
	}
	return nil, &SolveFailure{Attempts: maxOverrideAttempts, Last: lastErr}
}

// runPipeline turns one already-resolved flat package list into the
// final aggregated result: build the graph, walk it, combine
// depths/groups, compute the marker fixed point, and fold feature
// variants into their base packages.
func (s *Solver) runPipeline(root *graph.Package, flat []*graph.Package) ([]*graph.Package, map[string]*aggregate.Info, error) {
	g := graph.NewGraph(root, flat)
	order, backEdges, err := aggregate.Walk(g)
	if err != nil {
		return nil, nil, err
	}
	packages, infos := aggregate.Combine(g, order)
	if err := aggregate.ComputeMarkers(infos, backEdges); err != nil {
		return nil, nil, err
	}
	folded, foldedInfos := aggregate.Fold(packages, infos)
	return folded, foldedInfos, nil
}

// finalize reduces every accumulated package's per-group markers
// against the project's interpreter constraint and assembles the
// Transaction. The root project itself is kept in infos (ComputeMarkers
// needs its entry as the traversal's group-less source) but excluded from
// Solved/Installed: it's the project being resolved, not a dependency of
// it.
func (s *Solver) finalize(root *graph.Package, acc map[string]*aggregate.Accumulated, provider Provider) (*Transaction, error) {
	simplifier := markers.NewSimplifier()
	pythonConstraint := provider.PythonConstraint()
	rootKey := root.ID.Key()

	solved := make([]*graph.Package, 0, len(acc))
	installed := make([]*graph.Package, 0, len(acc))
	infos := make(map[string]*aggregate.Info, len(acc))

	for key, entry := range acc {
		for g, m := range entry.Info.Markers {
			entry.Info.Markers[g] = simplifier.Simplify(m, pythonConstraint)
		}
		infos[key] = entry.Info
		if key == rootKey {
			continue
		}
		solved = append(solved, entry.Pkg)
		if !entry.Pkg.Optional {
			installed = append(installed, entry.Pkg)
		}
	}

	return &Transaction{Root: root, Solved: solved, Infos: infos, Installed: installed}, nil
}
