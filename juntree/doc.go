// Package juntree implements junction trees over clusters of discrete
// variables: the clique-tree data structure that calibration engines
// (package inference) operate on.
//
// Structure
//
//	A Tree holds cliques (each a core.Domain of variables) joined by
//	edges whose separators are ALWAYS the intersection of the two
//	endpoint domains; separators are derived state and recomputed on
//	every structural edit. Cliques are addressed by dense CliqueID
//	handles; all accessors return deterministic (ID-ascending) orders.
//
// Lifecycle
//
//	Unbuilt    - structure under edit; no guarantees.
//	Structural - Validate() has passed: the edge set is a tree
//	             (connected, acyclic) satisfying the running-
//	             intersection property.
//	Populated  - every clique and separator carries a potential
//	             (Populate multiplied the model factors in).
//
//	Any structural edit drops the tree back to Unbuilt. Validation is
//	on-demand at the boundaries, not per edit; WithEdgeValidation turns
//	on the incremental per-AddEdge check for debugging.
//
// Construction from a model
//
//	Build(domains, strategy) triangulates the interaction graph of the
//	given factor domains by variable elimination (MinDegree or MinFill
//	strategies, or any EliminationStrategy), prunes non-maximal
//	elimination cliques, and connects the cliques by a maximum-weight
//	spanning tree over separator cardinalities (union-find Kruskal).
//	The result is validated before it is returned.
//
// Errors:
//
//	ErrUnknownClique   - a CliqueID not present in the tree.
//	ErrSelfLoop        - an edge from a clique to itself.
//	ErrEdgeExists      - AddEdge on an existing edge.
//	ErrNoEdge          - an operation naming an absent edge.
//	ErrCliqueHasEdges  - RemoveClique without cascade on an attached clique.
//	ErrNotTree         - the edge set is cyclic or disconnected.
//	ErrRIPViolated     - a variable's cliques do not form a connected subtree.
//	ErrNotPopulated    - a potential operation on an unpopulated tree.
//	ErrFactorNotCovered- Populate given a factor no clique covers.
//	ErrEmptyTree       - Validate/Build on a tree with no cliques.
package juntree
