package juntree

import (
	"sort"

	"github.com/Matt3164/sill/core"
)

// unionFind is a disjoint-set forest with path compression and union by
// rank, used by the Kruskal pass.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}

	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}

	return x
}

// union merges the sets of x and y; returns false if already joined.
func (uf *unionFind) union(x, y int) bool {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}

	return true
}

// maximalCliques drops every clique included in another, deduplicating
// equal domains, and returns the survivors in a deterministic order.
func maximalCliques(cliques []core.Domain) []core.Domain {
	out := make([]core.Domain, 0, len(cliques))
	for i, c := range cliques {
		maximal := true
		for j, d := range cliques {
			if i == j {
				continue
			}
			if d.Includes(c) && (d.Len() > c.Len() || j < i) {
				// Strictly larger, or an equal earlier duplicate.
				maximal = false
				break
			}
		}
		if maximal {
			out = append(out, c)
		}
	}

	return out
}

// Build constructs a junction tree covering the given factor domains:
//
//  1. Triangulate the interaction graph by variable elimination under
//     the given strategy, collecting the elimination cliques.
//  2. Prune non-maximal cliques.
//  3. Join cliques by a maximum-weight spanning tree over separator
//     cardinalities (Kruskal over a union-find forest); independent
//     components are then linked with empty separators so the result
//     is a single tree.
//
// Every input domain is included in some clique, so the tree can be
// populated with factors over exactly those domains. The result is
// validated (tree-ness and running intersection) before return; it is
// in the Structural state. Returns ErrEmptyTree for no domains.
// Complexity: O(n² · elimination cost) dominated by triangulation.
func Build(domains []core.Domain, strategy EliminationStrategy, opts ...Option) (*Tree, error) {
	if len(domains) == 0 {
		return nil, ErrEmptyTree
	}

	g := NewInteractionGraph(domains)
	_, elim := EliminationOrder(g, strategy)
	cliques := maximalCliques(elim)
	if len(cliques) == 0 {
		// All domains are empty: a single empty clique carries the
		// scalar factors.
		cliques = []core.Domain{core.NewDomain()}
	}

	// Options apply after assembly: incremental edge validation would
	// reject correct intermediate forests as RIP violations.
	t := NewTree()
	ids := make([]CliqueID, len(cliques))
	for i, c := range cliques {
		ids[i] = t.AddClique(c)
	}

	// Candidate edges by descending separator size; ties broken by
	// endpoint order for determinism.
	type cand struct {
		i, j   int
		weight int
	}
	cands := make([]cand, 0)
	for i := range cliques {
		for j := i + 1; j < len(cliques); j++ {
			if w := cliques[i].Intersect(cliques[j]).Len(); w > 0 {
				cands = append(cands, cand{i, j, w})
			}
		}
	}
	sort.Slice(cands, func(a, b int) bool {
		if cands[a].weight != cands[b].weight {
			return cands[a].weight > cands[b].weight
		}
		if cands[a].i != cands[b].i {
			return cands[a].i < cands[b].i
		}
		return cands[a].j < cands[b].j
	})

	uf := newUnionFind(len(cliques))
	for _, c := range cands {
		if uf.union(c.i, c.j) {
			if err := t.AddEdge(ids[c.i], ids[c.j]); err != nil {
				return nil, err
			}
		}
	}

	// Link leftover components (models with independent blocks) through
	// empty separators.
	for i := 1; i < len(cliques); i++ {
		if uf.union(0, i) {
			if err := t.AddEdge(ids[0], ids[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}
