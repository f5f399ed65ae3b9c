package juntree

import (
	"github.com/Matt3164/sill/core"
)

// InteractionGraph is the undirected adjacency over variables induced
// by a set of factor domains: two variables are adjacent iff some
// domain contains both. Eliminating a variable pairwise-connects its
// neighbors (the triangulation fill) and removes it, so the structure
// is consumed by an elimination run.
type InteractionGraph struct {
	adj map[*core.Variable]core.Domain
}

// NewInteractionGraph builds the adjacency from the given domains.
// Complexity: O(Σ |domain|²).
func NewInteractionGraph(domains []core.Domain) *InteractionGraph {
	g := &InteractionGraph{adj: make(map[*core.Variable]core.Domain)}
	for _, d := range domains {
		vars := d.Vars()
		for _, v := range vars {
			if g.adj[v] == nil {
				g.adj[v] = core.NewDomain()
			}
			for _, w := range vars {
				if w != v {
					g.adj[v].Add(w)
				}
			}
		}
	}

	return g
}

// NumVars returns the number of remaining variables.
func (g *InteractionGraph) NumVars() int { return len(g.adj) }

// Vars returns the remaining variables in ID-ascending order.
func (g *InteractionGraph) Vars() []*core.Variable {
	d := core.NewDomain()
	for v := range g.adj {
		d.Add(v)
	}

	return d.Vars()
}

// Neighbors returns a copy of v's adjacency set.
func (g *InteractionGraph) Neighbors(v *core.Variable) core.Domain {
	return g.adj[v].Clone()
}

// Degree returns the number of neighbors of v.
func (g *InteractionGraph) Degree(v *core.Variable) int { return len(g.adj[v]) }

// FillCount returns the number of missing edges among v's neighbors:
// the edges elimination of v would add.
func (g *InteractionGraph) FillCount(v *core.Variable) int {
	vars := g.adj[v].Vars()
	fill := 0
	for i, a := range vars {
		for _, b := range vars[i+1:] {
			if !g.adj[a].Contains(b) {
				fill++
			}
		}
	}

	return fill
}

// Eliminate removes v after pairwise-connecting its neighbors, and
// returns the elimination clique {v} ∪ neighbors(v).
func (g *InteractionGraph) Eliminate(v *core.Variable) core.Domain {
	nbrs := g.adj[v]
	clique := nbrs.Clone()
	clique.Add(v)

	vars := nbrs.Vars()
	for i, a := range vars {
		for _, b := range vars[i+1:] {
			g.adj[a].Add(b)
			g.adj[b].Add(a)
		}
	}
	for _, n := range vars {
		g.adj[n].Remove(v)
	}
	delete(g.adj, v)

	return clique
}

// EliminationStrategy picks the next variable to eliminate out of the
// candidate set, judged against the current interaction graph. The
// candidates are a subset of g's variables in ID-ascending order
// (variable elimination with a retained set never offers the retained
// variables). Implementations must be deterministic.
type EliminationStrategy interface {
	NextVariable(g *InteractionGraph, candidates []*core.Variable) *core.Variable
}

// MinDegree eliminates the candidate with the fewest remaining
// neighbors, breaking ties toward the lowest ID.
type MinDegree struct{}

// NextVariable implements EliminationStrategy.
func (MinDegree) NextVariable(g *InteractionGraph, candidates []*core.Variable) *core.Variable {
	var best *core.Variable
	bestDeg := 0
	for _, v := range candidates {
		if d := g.Degree(v); best == nil || d < bestDeg {
			best, bestDeg = v, d
		}
	}

	return best
}

// MinFill eliminates the candidate whose elimination adds the fewest
// fill edges, breaking ties toward the lowest ID.
type MinFill struct{}

// NextVariable implements EliminationStrategy.
func (MinFill) NextVariable(g *InteractionGraph, candidates []*core.Variable) *core.Variable {
	var best *core.Variable
	bestFill := 0
	for _, v := range candidates {
		if f := g.FillCount(v); best == nil || f < bestFill {
			best, bestFill = v, f
		}
	}

	return best
}

// EliminationOrder runs the strategy to exhaustion over all variables,
// consuming g, and returns the elimination order together with the
// elimination clique of each step.
func EliminationOrder(g *InteractionGraph, s EliminationStrategy) ([]*core.Variable, []core.Domain) {
	order := make([]*core.Variable, 0, g.NumVars())
	cliques := make([]core.Domain, 0, g.NumVars())
	for g.NumVars() > 0 {
		v := s.NextVariable(g, g.Vars())
		order = append(order, v)
		cliques = append(cliques, g.Eliminate(v))
	}

	return order, cliques
}
