package solve

import (
	"context"
	"sync"

	"github.com/evanlloyd/depwalk/core/graph"
)

// BatchTarget is one (root, provider) pair to solve as part of a batch —
// for example one per lockfile target environment.
type BatchTarget struct {
	Root     *graph.Package
	Provider Provider
}

// BatchResult is one BatchTarget's outcome. ResolveBatch returns results in
// the same order as the targets it was given, so a result's slice index is
// its target's index.
type BatchResult struct {
	Transaction *Transaction
	Err         error
}

// ResolveBatch runs Solve for every target concurrently, bounded by
// maxWorkers (a non-positive value defaults to 10), mirroring the
// teacher's ParallelResolver: each target's own aggregation core still
// runs single-threaded, only the across-target fan-out is parallel.
func (s *Solver) ResolveBatch(ctx context.Context, targets []BatchTarget, maxWorkers int) []BatchResult {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	results := make([]BatchResult, len(targets))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(index int, t BatchTarget) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[index] = BatchResult{Err: ctx.Err()}
				return
			}
			txn, err := s.Solve(ctx, t.Root, t.Provider)
			results[index] = BatchResult{Transaction: txn, Err: err}
		}(i, target)
	}

	wg.Wait()
	return results
}

// ResolveMultiple is a convenience wrapper around ResolveBatch that
// returns the first error encountered (by target index), or nil if
// every target converged.
func (s *Solver) ResolveMultiple(ctx context.Context, targets []BatchTarget, maxWorkers int) ([]*Transaction, error) {
	results := s.ResolveBatch(ctx, targets, maxWorkers)
	txns := make([]*Transaction, len(results))
	for i, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		txns[i] = r.Transaction
	}
	return txns, nil
}
