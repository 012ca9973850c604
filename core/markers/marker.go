// Package markers implements a small boolean algebra over environment
// variables (python_version, sys_platform, extra, ...), used to describe the
// conditions under which a dependency applies. No published Go module
// implements PEP 508-style marker expressions, so this is a from-scratch
// implementation of the contract consumed by the aggregation core: Intersect,
// Union, WithoutExtras, Only, ReduceByPythonConstraint, plus the Any/Empty
// identities.
package markers

import (
	"fmt"
	"sort"
	"strings"
)

// op identifies the shape of a Marker node.
type op int

const (
	opAny op = iota
	opEmpty
	opCompare
	opAnd
	opOr
)

// Comparator is the relational operator of a leaf marker clause.
type Comparator string

const (
	Eq  Comparator = "=="
	Neq Comparator = "!="
	Lt  Comparator = "<"
	Lte Comparator = "<="
	Gt  Comparator = ">"
	Gte Comparator = ">="
	In  Comparator = "in"
)

// Marker is an immutable boolean expression over environment variables.
// The zero value is Any, the tautology.
type Marker struct {
	kind     op
	variable string
	cmp      Comparator
	value    string
	clauses  []Marker // operands of And/Or, sorted+deduped for canonical form
}

// Any is the tautology marker: always satisfied, the intersection identity.
var Any = Marker{kind: opAny}

// Empty is the contradiction marker: never satisfied, the union identity.
var Empty = Marker{kind: opEmpty}

// NewComparison builds a single leaf clause, e.g. python_version == "3.8".
func NewComparison(variable string, cmp Comparator, value string) Marker {
	return Marker{kind: opCompare, variable: variable, cmp: cmp, value: value}
}

// IsAny reports whether m is the tautology.
func (m Marker) IsAny() bool { return m.kind == opAny }

// IsEmpty reports whether m is the contradiction.
func (m Marker) IsEmpty() bool { return m.kind == opEmpty }

// Union returns m ∪ other (logical OR), flattened and simplified.
// Empty is the identity: Empty ∪ x == x.
func (m Marker) Union(other Marker) Marker {
	if m.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return m
	}
	if m.IsAny() || other.IsAny() {
		return Any
	}
	clauses := flatten(opOr, m, other)
	return normalize(opOr, clauses)
}

// Intersect returns m ∩ other (logical AND), flattened and simplified.
// Any is the identity: Any ∩ x == x.
func (m Marker) Intersect(other Marker) Marker {
	if m.IsAny() {
		return other
	}
	if other.IsAny() {
		return m
	}
	if m.IsEmpty() || other.IsEmpty() {
		return Empty
	}
	clauses := flatten(opAnd, m, other)
	return normalize(opAnd, clauses)
}

// flatten collects the operands of a same-kind And/Or tree one level deep,
// so that a.Union(b).Union(c) normalizes the same as a.Union(b.Union(c)).
func flatten(kind op, ms ...Marker) []Marker {
	var out []Marker
	for _, m := range ms {
		if m.kind == kind {
			out = append(out, m.clauses...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

// normalize dedupes and sorts clauses by canonical string, then rebuilds a
// single node. A single surviving clause collapses to itself.
func normalize(kind op, clauses []Marker) Marker {
	seen := make(map[string]Marker, len(clauses))
	for _, c := range clauses {
		seen[c.String()] = c
	}
	out := make([]Marker, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	if len(out) == 1 {
		return out[0]
	}
	return Marker{kind: kind, clauses: out}
}

// WithoutExtras strips every `extra == "..."` clause from the expression:
// the root's own extras-activation context must not leak into the
// transitive closure it produces.
func (m Marker) WithoutExtras() Marker {
	switch m.kind {
	case opAny, opEmpty:
		return m
	case opCompare:
		if m.variable == "extra" {
			return Any
		}
		return m
	case opAnd:
		clauses := make([]Marker, 0, len(m.clauses))
		for _, c := range m.clauses {
			stripped := c.WithoutExtras()
			if stripped.IsAny() {
				continue
			}
			clauses = append(clauses, stripped)
		}
		if len(clauses) == 0 {
			return Any
		}
		if len(clauses) == 1 {
			return clauses[0]
		}
		return normalize(opAnd, clauses)
	case opOr:
		clauses := make([]Marker, 0, len(m.clauses))
		for _, c := range m.clauses {
			clauses = append(clauses, c.WithoutExtras())
		}
		return normalize(opOr, clauses)
	}
	return m
}

// Only projects the expression onto a single variable, returning the
// sub-expression built only from clauses mentioning varname, with all other
// clauses treated as satisfied (Any). Used by the override-promotion check
// that asks whether a marker mentions only the interpreter variable.
func (m Marker) Only(varname string) Marker {
	switch m.kind {
	case opAny, opEmpty:
		return m
	case opCompare:
		if m.variable == varname {
			return m
		}
		return Any
	case opAnd:
		clauses := make([]Marker, 0, len(m.clauses))
		for _, c := range m.clauses {
			p := c.Only(varname)
			if !p.IsAny() {
				clauses = append(clauses, p)
			}
		}
		if len(clauses) == 0 {
			return Any
		}
		return normalize(opAnd, clauses)
	case opOr:
		clauses := make([]Marker, 0, len(m.clauses))
		for _, c := range m.clauses {
			clauses = append(clauses, c.Only(varname))
		}
		return normalize(opOr, clauses)
	}
	return m
}

// MentionsOnly reports whether every variable referenced by m is varname
// (or m is Any/Empty, which mention nothing).
func (m Marker) MentionsOnly(varname string) bool {
	switch m.kind {
	case opAny, opEmpty:
		return true
	case opCompare:
		return m.variable == varname
	case opAnd, opOr:
		for _, c := range m.clauses {
			if !c.MentionsOnly(varname) {
				return false
			}
		}
		return true
	}
	return false
}

// Equal reports structural equality after normalization; And/Or are
// order-independent because clauses are canonically sorted at construction.
func (m Marker) Equal(other Marker) bool {
	return m.String() == other.String()
}

// String renders the marker using PEP 508-ish infix syntax.
func (m Marker) String() string {
	switch m.kind {
	case opAny:
		return ""
	case opEmpty:
		return "<empty>"
	case opCompare:
		return fmt.Sprintf("%s %s %q", m.variable, m.cmp, m.value)
	case opAnd:
		return joinClauses(m.clauses, " and ")
	case opOr:
		return joinClauses(m.clauses, " or ")
	}
	return ""
}

func joinClauses(clauses []Marker, sep string) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		s := c.String()
		if c.kind == opOr && sep == " and " {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

// Hash returns a stable cache key for the expression, used by the
// simplifier's memoization table.
func (m Marker) Hash() string {
	return m.String()
}
