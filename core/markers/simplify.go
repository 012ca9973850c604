package markers

import (
	"github.com/evanlloyd/depwalk/cache"
	"github.com/evanlloyd/depwalk/version"
)

// Simplifier reduces markers by a project's interpreter constraint, caching
// results since the aggregation core repeatedly re-examines the same
// marker/constraint pairs. One Simplifier is created per solve and
// discarded afterwards — the cache backing it is unbounded for exactly
// that lifetime.
type Simplifier struct {
	cache    *cache.Memo[Marker]
	promoted *cache.Memo[bool] // markers already confirmed promotable to Any
}

// NewSimplifier creates a Simplifier with a fresh, empty memoization table.
func NewSimplifier() *Simplifier {
	return &Simplifier{
		cache:    cache.NewMemo[Marker](),
		promoted: cache.NewMemo[bool](),
	}
}

// Simplify reduces m against pythonConstraint, removing any clause subsumed
// by it. pythonConstraint is read with version.ParseVersionRange, so it must
// use that interval syntax (such as "[3.8, 4.0)"); a constraint it cannot
// parse, including a specifier list such as ">=3.8,<4.0", leaves every
// clause of m in place and promotes nothing. It additionally
// promotes a marker that mentions only python_version, and whose
// python_version clauses are already covered by pythonConstraint, to Any
// — the post-processing step an override merge needs after widening a
// marker.
func (s *Simplifier) Simplify(m Marker, pythonConstraint string) Marker {
	key := m.Hash() + "|" + pythonConstraint
	return s.cache.GetOrCompute(key, func() Marker {
		reduced := s.reduce(m, pythonConstraint)
		if reduced.MentionsOnly("python_version") {
			promotedKey := reduced.Hash() + "|" + pythonConstraint
			if s.promoted.GetOrCompute(promotedKey, func() bool {
				return s.covers(pythonConstraint, reduced)
			}) {
				return Any
			}
		}
		return reduced
	})
}

// reduce walks the tree dropping python_version clauses whose truth value
// is already determined by pythonConstraint.
func (s *Simplifier) reduce(m Marker, pythonConstraint string) Marker {
	switch {
	case m.IsAny(), m.IsEmpty():
		return m
	case m.kind == opCompare:
		if m.variable != "python_version" || pythonConstraint == "" {
			return m
		}
		switch s.classify(pythonConstraint, m) {
		case always:
			return Any
		case never:
			return Empty
		default:
			return m
		}
	case m.kind == opAnd:
		result := Any
		for _, c := range m.clauses {
			result = result.Intersect(s.reduce(c, pythonConstraint))
		}
		return result
	case m.kind == opOr:
		result := Empty
		for _, c := range m.clauses {
			result = result.Union(s.reduce(c, pythonConstraint))
		}
		return result
	}
	return m
}

type verdict int

const (
	undetermined verdict = iota
	always
	never
)

// classify decides whether every version satisfying pythonConstraint also
// satisfies leaf (always), no version satisfying it does (never), or it
// depends on the exact version (undetermined) — in which case the leaf must
// be kept.
func (s *Simplifier) classify(pythonConstraint string, leaf Marker) verdict {
	constraintRange, err := version.ParseVersionRange(pythonConstraint)
	if err != nil {
		return undetermined
	}
	leafRange, err := comparisonToRange(leaf.cmp, leaf.value)
	if err != nil {
		return undetermined
	}

	if rangeImplies(constraintRange, leafRange) {
		return always
	}
	if rangesDisjoint(constraintRange, leafRange) {
		return never
	}
	return undetermined
}

// covers reports whether pythonConstraint implies m is always true; used by
// the override-promotion check (m already reduced to mention only
// python_version, so every remaining leaf can be classified directly).
func (s *Simplifier) covers(pythonConstraint string, m Marker) bool {
	if m.IsAny() {
		return true
	}
	if m.IsEmpty() {
		return false
	}
	if m.kind == opCompare {
		return s.classify(pythonConstraint, m) == always
	}
	if m.kind == opAnd {
		for _, c := range m.clauses {
			if !s.covers(pythonConstraint, c) {
				return false
			}
		}
		return true
	}
	if m.kind == opOr {
		for _, c := range m.clauses {
			if s.covers(pythonConstraint, c) {
				return true
			}
		}
		return false
	}
	return false
}

// comparisonToRange converts a single leaf comparison into the equivalent
// version.Range, so it can be compared against the project's constraint
// range using the same containment arithmetic.
func comparisonToRange(cmp Comparator, value string) (*version.Range, error) {
	v, err := version.Parse(value)
	if err != nil {
		return nil, err
	}
	switch cmp {
	case Eq:
		return &version.Range{MinVersion: v, MinInclusive: true, MaxVersion: v, MaxInclusive: true}, nil
	case Neq:
		return nil, errUnsupportedForRange
	case Lt:
		return &version.Range{MaxVersion: v, MaxInclusive: false}, nil
	case Lte:
		return &version.Range{MaxVersion: v, MaxInclusive: true}, nil
	case Gt:
		return &version.Range{MinVersion: v, MinInclusive: false}, nil
	case Gte:
		return &version.Range{MinVersion: v, MinInclusive: true}, nil
	default:
		return nil, errUnsupportedForRange
	}
}

var errUnsupportedForRange = simplifyError("unsupported comparator for range containment")

type simplifyError string

func (e simplifyError) Error() string { return string(e) }

// rangeImplies reports whether every version satisfying outer also
// satisfies inner — i.e. outer is a subset of inner.
func rangeImplies(outer, inner *version.Range) bool {
	if inner.MinVersion != nil {
		if outer.MinVersion == nil {
			return false
		}
		cmp := outer.MinVersion.Compare(inner.MinVersion)
		if cmp < 0 {
			return false
		}
		if cmp == 0 && !inner.MinInclusive && outer.MinInclusive {
			return false
		}
	}
	if inner.MaxVersion != nil {
		if outer.MaxVersion == nil {
			return false
		}
		cmp := outer.MaxVersion.Compare(inner.MaxVersion)
		if cmp > 0 {
			return false
		}
		if cmp == 0 && !inner.MaxInclusive && outer.MaxInclusive {
			return false
		}
	}
	return true
}

// rangesDisjoint reports whether no version can satisfy both a and b.
func rangesDisjoint(a, b *version.Range) bool {
	if a.MaxVersion != nil && b.MinVersion != nil {
		cmp := a.MaxVersion.Compare(b.MinVersion)
		if cmp < 0 || (cmp == 0 && !(a.MaxInclusive && b.MinInclusive)) {
			return true
		}
	}
	if b.MaxVersion != nil && a.MinVersion != nil {
		cmp := b.MaxVersion.Compare(a.MinVersion)
		if cmp < 0 || (cmp == 0 && !(b.MaxInclusive && a.MinInclusive)) {
			return true
		}
	}
	return false
}
