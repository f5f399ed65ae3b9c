package core

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for core primitives. All are returned directly or
// wrapped with fmt.Errorf("ctx: %w", Err); callers match via errors.Is.
var (
	// ErrBadArity indicates a variable arity below 1.
	ErrBadArity = errors.New("core: variable arity must be >= 1")

	// ErrNilVariable indicates a nil *Variable argument.
	ErrNilVariable = errors.New("core: nil variable")

	// ErrUnknownVariable indicates a variable ID not owned by the Universe.
	ErrUnknownVariable = errors.New("core: unknown variable id")

	// ErrUnassigned indicates an assignment missing a required variable.
	ErrUnassigned = errors.New("core: variable has no assigned value")

	// ErrIncompatibleVars indicates a substitution onto a variable whose
	// arity differs from the original.
	ErrIncompatibleVars = errors.New("core: variables are not arity-compatible")

	// ErrDuplicateVars indicates a repeated variable in a sequence that
	// must be duplicate-free (factor argument lists, domains).
	ErrDuplicateVars = errors.New("core: duplicate variable in sequence")
)

// Variable is a discrete variable with a finite number of values.
//
// Identity is the pointer itself: two *Variable values are the same
// variable iff they are the same pointer. The ID is a dense integer
// assigned by the owning Universe in creation order; it is used only to
// fix canonical orderings, never as a lookup key by callers.
type Variable struct {
	id    int
	name  string
	arity int
}

// ID returns the Universe-assigned creation index of this variable.
// Complexity: O(1).
func (v *Variable) ID() int { return v.id }

// Name returns the human-readable label given at creation.
// Complexity: O(1).
func (v *Variable) Name() string { return v.name }

// Arity returns the number of values this variable can take (≥ 1).
// Complexity: O(1).
func (v *Variable) Arity() int { return v.arity }

// String renders the variable as "name(#id:arity)" for diagnostics.
func (v *Variable) String() string {
	return fmt.Sprintf("%s(#%d:%d)", v.name, v.id, v.arity)
}

// Universe is the arena that owns every Variable. It hands out stable
// pointer handles; variables are destroyed collectively with the
// Universe, never one by one.
//
// All methods are safe for concurrent use.
type Universe struct {
	mu   sync.RWMutex
	vars []*Variable
}

// NewUniverse creates an empty variable arena.
func NewUniverse() *Universe {
	return &Universe{}
}

// NewVariable allocates a fresh variable with the given name and arity.
// Returns ErrBadArity if arity < 1.
// Complexity: O(1) amortized.
func (u *Universe) NewVariable(name string, arity int) (*Variable, error) {
	if arity < 1 {
		return nil, fmt.Errorf("Universe.NewVariable(%q, %d): %w", name, arity, ErrBadArity)
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	v := &Variable{id: len(u.vars), name: name, arity: arity}
	u.vars = append(u.vars, v)

	return v, nil
}

// NewVariables allocates n variables named prefix0..prefix(n-1), all
// with the same arity. Returns ErrBadArity if arity < 1.
// Complexity: O(n).
func (u *Universe) NewVariables(prefix string, n, arity int) ([]*Variable, error) {
	out := make([]*Variable, 0, n)
	for i := 0; i < n; i++ {
		v, err := u.NewVariable(fmt.Sprintf("%s%d", prefix, i), arity)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}

// Variable resolves an ID back to its handle, e.g. when decoding a
// serialized factor. Returns ErrUnknownVariable for out-of-range IDs.
// Complexity: O(1).
func (u *Universe) Variable(id int) (*Variable, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if id < 0 || id >= len(u.vars) {
		return nil, fmt.Errorf("Universe.Variable(%d): %w", id, ErrUnknownVariable)
	}

	return u.vars[id], nil
}

// Size returns the number of variables allocated so far.
// Complexity: O(1).
func (u *Universe) Size() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return len(u.vars)
}

// VarMap is a 1:1 substitution from old variables to new ones. Missing
// variables are assumed to map to themselves.
type VarMap map[*Variable]*Variable

// Apply resolves v under the map, defaulting to identity. Returns
// ErrIncompatibleVars if the image has a different arity.
func (m VarMap) Apply(v *Variable) (*Variable, error) {
	w, ok := m[v]
	if !ok {
		return v, nil
	}
	if w == nil {
		return nil, ErrNilVariable
	}
	if w.Arity() != v.Arity() {
		return nil, fmt.Errorf("VarMap.Apply(%v→%v): %w", v, w, ErrIncompatibleVars)
	}

	return w, nil
}
