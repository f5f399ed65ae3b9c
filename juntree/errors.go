package juntree

import "errors"

// Sentinel errors for junction-tree construction and lifecycle.
// Returned wrapped with fmt.Errorf("ctx: %w", Err) naming the offending
// clique or variable; callers match with errors.Is.
var (
	// ErrUnknownClique indicates a CliqueID not present in the tree.
	ErrUnknownClique = errors.New("juntree: unknown clique id")

	// ErrSelfLoop indicates an edge from a clique to itself.
	ErrSelfLoop = errors.New("juntree: self-loop edge")

	// ErrEdgeExists indicates AddEdge on an already-connected pair.
	ErrEdgeExists = errors.New("juntree: edge already exists")

	// ErrNoEdge indicates an operation naming an edge that is absent.
	ErrNoEdge = errors.New("juntree: no such edge")

	// ErrCliqueHasEdges indicates RemoveClique without cascade on a
	// clique that still has incident edges.
	ErrCliqueHasEdges = errors.New("juntree: clique has incident edges")

	// ErrNotTree indicates an edge set that is cyclic or disconnected.
	ErrNotTree = errors.New("juntree: structure is not a tree")

	// ErrRIPViolated indicates a variable whose cliques do not induce a
	// connected subtree (running-intersection property).
	ErrRIPViolated = errors.New("juntree: running-intersection property violated")

	// ErrNotPopulated indicates a potential operation on a tree whose
	// cliques carry no potentials yet.
	ErrNotPopulated = errors.New("juntree: tree is not populated")

	// ErrFactorNotCovered indicates a model factor whose arguments no
	// clique includes.
	ErrFactorNotCovered = errors.New("juntree: no clique covers factor arguments")

	// ErrEmptyTree indicates validation or construction over zero cliques.
	ErrEmptyTree = errors.New("juntree: tree has no cliques")
)
