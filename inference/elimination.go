package inference

import (
	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/juntree"
)

// VariableElimination computes the unnormalized marginal of the product
// of the given factors over the retained domain, by sum-product
// elimination of every other variable in the order the strategy picks.
// The inputs are never mutated. This is the reference algorithm the
// calibration engines are cross-checked against, and the fallback for
// belief queries no single clique covers.
// Complexity: exponential in the induced width of the chosen order.
func VariableElimination(factors []*factor.TableFactor, retained core.Domain, s juntree.EliminationStrategy) (*factor.TableFactor, error) {
	work := make([]*factor.TableFactor, len(factors))
	domains := make([]core.Domain, len(factors))
	for i, f := range factors {
		work[i] = f
		domains[i] = f.Args()
	}
	g := juntree.NewInteractionGraph(domains)

	for {
		candidates := make([]*core.Variable, 0, g.NumVars())
		for _, v := range g.Vars() {
			if !retained.Contains(v) {
				candidates = append(candidates, v)
			}
		}
		if len(candidates) == 0 {
			break
		}
		v := s.NextVariable(g, candidates)
		g.Eliminate(v)

		// Fold every factor mentioning v into one message over the rest.
		var prod *factor.TableFactor
		rest := make([]*factor.TableFactor, 0, len(work))
		for _, f := range work {
			if !f.HasArg(v) {
				rest = append(rest, f)
				continue
			}
			if prod == nil {
				prod = f.Clone()
				continue
			}
			if err := prod.CombineIn(f, factor.OpProduct); err != nil {
				return nil, err
			}
		}
		if prod == nil {
			continue
		}
		msg, err := prod.Marginal(prod.Args().Difference(core.NewDomain(v)))
		if err != nil {
			return nil, err
		}
		work = append(rest, msg)
	}

	result := factor.Constant(1)
	for _, f := range work {
		if err := result.CombineIn(f, factor.OpProduct); err != nil {
			return nil, err
		}
	}

	return result, nil
}
