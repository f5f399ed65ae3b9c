package core

import (
	"sort"
	"strings"
)

// Domain is a set of variables. The zero value (nil) is the empty set
// and is valid for all read operations.
//
// Set operations return fresh domains; none mutates a receiver other
// than Add/Remove. Canonical order (Vars) is ascending variable ID.
type Domain map[*Variable]struct{}

// NewDomain builds a domain from the given variables. Duplicates
// collapse silently (set semantics); nil entries are ignored.
// Complexity: O(n).
func NewDomain(vars ...*Variable) Domain {
	d := make(Domain, len(vars))
	for _, v := range vars {
		if v != nil {
			d[v] = struct{}{}
		}
	}

	return d
}

// Contains reports membership of v.
// Complexity: O(1).
func (d Domain) Contains(v *Variable) bool {
	_, ok := d[v]
	return ok
}

// Len returns the cardinality of the set.
func (d Domain) Len() int { return len(d) }

// Add inserts v into the set in place.
func (d Domain) Add(v *Variable) {
	if v != nil {
		d[v] = struct{}{}
	}
}

// Remove deletes v from the set in place.
func (d Domain) Remove(v *Variable) { delete(d, v) }

// Clone returns an independent copy of the set.
// Complexity: O(n).
func (d Domain) Clone() Domain {
	out := make(Domain, len(d))
	for v := range d {
		out[v] = struct{}{}
	}

	return out
}

// Union returns d ∪ other. Union with the empty set is the identity.
// Complexity: O(|d| + |other|).
func (d Domain) Union(other Domain) Domain {
	out := make(Domain, len(d)+len(other))
	for v := range d {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}

	return out
}

// Intersect returns d ∩ other. Intersection with the empty set is empty.
// Complexity: O(min(|d|, |other|)).
func (d Domain) Intersect(other Domain) Domain {
	small, large := d, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Domain)
	for v := range small {
		if large.Contains(v) {
			out[v] = struct{}{}
		}
	}

	return out
}

// Difference returns d \ other.
// Complexity: O(|d|).
func (d Domain) Difference(other Domain) Domain {
	out := make(Domain)
	for v := range d {
		if !other.Contains(v) {
			out[v] = struct{}{}
		}
	}

	return out
}

// Includes reports whether other ⊆ d.
// Complexity: O(|other|).
func (d Domain) Includes(other Domain) bool {
	if len(other) > len(d) {
		return false
	}
	for v := range other {
		if !d.Contains(v) {
			return false
		}
	}

	return true
}

// Disjoint reports whether d ∩ other = ∅.
// Complexity: O(min(|d|, |other|)).
func (d Domain) Disjoint(other Domain) bool {
	small, large := d, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for v := range small {
		if large.Contains(v) {
			return false
		}
	}

	return true
}

// Equal reports set equality.
func (d Domain) Equal(other Domain) bool {
	return len(d) == len(other) && d.Includes(other)
}

// Vars returns the canonical slice form: members sorted by ascending ID.
// This order is what fixes table dimension order when a factor is built
// from a Domain rather than an explicit sequence.
// Complexity: O(n log n).
func (d Domain) Vars() []*Variable {
	out := make([]*Variable, 0, len(d))
	for v := range d {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	return out
}

// NumAssignments returns the product of member arities: the number of
// joint configurations of the set. The empty domain has exactly one
// (the empty assignment).
// Complexity: O(n).
func (d Domain) NumAssignments() int {
	n := 1
	for v := range d {
		n *= v.Arity()
	}

	return n
}

// Subst returns the image of d under the substitution m. The mapping
// must be 1:1 on d and arity-preserving; otherwise ErrIncompatibleVars
// (or ErrDuplicateVars on a collision) is returned.
// Complexity: O(n).
func (d Domain) Subst(m VarMap) (Domain, error) {
	out := make(Domain, len(d))
	for v := range d {
		w, err := m.Apply(v)
		if err != nil {
			return nil, err
		}
		if out.Contains(w) {
			return nil, ErrDuplicateVars
		}
		out[w] = struct{}{}
	}

	return out, nil
}

// String renders the domain as "{a, b, c}" in canonical order.
func (d Domain) String() string {
	names := make([]string, 0, len(d))
	for _, v := range d.Vars() {
		names = append(names, v.Name())
	}

	return "{" + strings.Join(names, ", ") + "}"
}
