// Package core defines the central Universe, Variable, Domain, and
// Assignment types on which the whole factor algebra is built.
//
// A Variable is an opaque discrete quantity with a finite arity (number
// of values it can take, ≥ 1). Variables are allocated once from an
// owning Universe and referenced by pointer thereafter: pointer identity
// IS variable identity, and the Universe-assigned integer ID fixes the
// canonical ordering used wherever a deterministic sequence of variables
// is required (table dimension order, message schedules, printouts).
// Variables are never destroyed individually; they live until the
// Universe itself is dropped.
//
// A Domain is a set of variables with the usual set algebra:
//
//	Union, Intersect, Difference, Includes, Disjoint, Equal
//
// plus Vars(), which returns the ID-sorted canonical slice form.
//
// An Assignment maps variables to values. Helpers check coverage of a
// variable sequence and convert to/from table coordinates.
//
// Errors:
//
//	ErrBadArity         - variable arity < 1.
//	ErrNilVariable      - a nil *Variable was supplied.
//	ErrUnknownVariable  - a variable ID is not registered in the Universe.
//	ErrUnassigned       - an assignment lacks a required variable.
//	ErrIncompatibleVars - a substitution maps to a variable of different arity.
//	ErrDuplicateVars    - a variable sequence contains a repeated variable.
package core
