package core

import (
	"fmt"
	"strings"
)

// Assignment maps variables to values in [0, arity). A partial
// assignment is valid; operations that need full coverage of some
// variable sequence say so explicitly.
type Assignment map[*Variable]int

// Value returns the assigned value of v, or ErrUnassigned.
func (a Assignment) Value(v *Variable) (int, error) {
	val, ok := a[v]
	if !ok {
		return 0, fmt.Errorf("Assignment.Value(%v): %w", v, ErrUnassigned)
	}

	return val, nil
}

// Covers reports whether every variable in vars has a value.
// Complexity: O(len(vars)).
func (a Assignment) Covers(vars []*Variable) bool {
	for _, v := range vars {
		if _, ok := a[v]; !ok {
			return false
		}
	}

	return true
}

// Domain returns the set of assigned variables.
func (a Assignment) Domain() Domain {
	d := make(Domain, len(a))
	for v := range a {
		d[v] = struct{}{}
	}

	return d
}

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for v, val := range a {
		out[v] = val
	}

	return out
}

// Merge overlays other onto a copy of a; other wins on conflicts.
func (a Assignment) Merge(other Assignment) Assignment {
	out := a.Clone()
	for v, val := range other {
		out[v] = val
	}

	return out
}

// String renders "{a=0, b=2}" in canonical variable order.
func (a Assignment) String() string {
	vars := a.Domain().Vars()
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf("%s=%d", v.Name(), a[v]))
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
