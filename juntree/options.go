package juntree

// Option customizes Tree behavior at construction time.
type Option func(*Tree)

// WithEdgeValidation turns on the incremental running-intersection
// check inside AddEdge. The check costs O(V·E) per edge, so it is off
// by default; Validate() performs the same check on demand.
func WithEdgeValidation() Option {
	return func(t *Tree) { t.validateEdges = true }
}
