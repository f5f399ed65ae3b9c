package inference

import (
	"fmt"
	"math"

	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/juntree"
)

// directedEdge identifies one message direction between adjacent cliques.
type directedEdge struct{ from, to juntree.CliqueID }

// pairKey is the unordered clique pair (a, b) with a < b.
type pairKey struct{ a, b juntree.CliqueID }

func pairOf(a, b juntree.CliqueID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// treeOrder returns the cliques in BFS order from the lowest-ID root,
// with each clique's BFS parent. order[0] is the root; reversed, the
// order visits children before parents, which is what the collect pass
// wants.
func treeOrder(t *juntree.Tree) (order []juntree.CliqueID, parent map[juntree.CliqueID]juntree.CliqueID) {
	ids := t.Cliques()
	root := ids[0]
	order = []juntree.CliqueID{root}
	parent = make(map[juntree.CliqueID]juntree.CliqueID, len(ids))
	seen := map[juntree.CliqueID]bool{root: true}
	for i := 0; i < len(order); i++ {
		cur := order[i]
		nbrs, _ := t.Neighbors(cur)
		for _, n := range nbrs {
			if !seen[n] {
				seen[n] = true
				parent[n] = cur
				order = append(order, n)
			}
		}
	}

	return order, parent
}

// partition returns the normalization constant of a calibrated belief;
// every clique of a calibrated tree reports the same value.
func partition(belief *factor.TableFactor) (float64, error) {
	z := belief.Sum()
	if !(z > 0) || math.IsInf(z, 1) || math.IsNaN(z) {
		return 0, fmt.Errorf("inference: partition function %v: %w", z, factor.ErrNonNormalizable)
	}

	return z, nil
}

// treePotentials snapshots the clique potentials; their product is the
// represented joint (separator potentials are the constant 1 outside
// calibration), which is what the elimination fallback consumes.
func treePotentials(t *juntree.Tree) ([]*factor.TableFactor, error) {
	ids := t.Cliques()
	pots := make([]*factor.TableFactor, 0, len(ids))
	for _, id := range ids {
		p, err := t.Potential(id)
		if err != nil {
			return nil, err
		}
		pots = append(pots, p)
	}

	return pots, nil
}
