package inference

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/juntree"
)

// Hugin calibrates by in-place absorption over working copies of the
// tree potentials: passing a message multiplies the receiving clique by
// newSeparator ⊘ oldSeparator (safe divide), so after the collect and
// distribute passes the working potentials are exactly the clique
// beliefs. The tree's own potentials are never touched.
type Hugin struct {
	tree *juntree.Tree
	cfg  config

	pots       map[juntree.CliqueID]*factor.TableFactor
	seps       map[pairKey]*factor.TableFactor
	calVersion uint64
	calibrated bool
	norm       float64
}

// NewHugin creates the engine over a populated tree. Returns
// juntree.ErrNotPopulated otherwise.
func NewHugin(t *juntree.Tree, opts ...Option) (*Hugin, error) {
	if t == nil {
		return nil, ErrNilTree
	}
	if t.State() != juntree.StatePopulated {
		return nil, fmt.Errorf("inference: Hugin over %v tree: %w", t.State(), juntree.ErrNotPopulated)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Hugin{tree: t, cfg: cfg}, nil
}

func (e *Hugin) fresh() bool {
	return e.calibrated && e.calVersion == e.tree.Version()
}

// absorb flows mass from clique `from` into clique `to`: the separator
// is updated to from's marginal, and `to` is multiplied by the
// separator's new/old ratio.
func (e *Hugin) absorb(from, to juntree.CliqueID) error {
	sepDomain, err := e.tree.Separator(from, to)
	if err != nil {
		return err
	}
	newSep, err := e.pots[from].Marginal(sepDomain)
	if err != nil {
		return err
	}
	k := pairOf(from, to)
	update := newSep.Clone()
	if err := update.CombineIn(e.seps[k], factor.OpDivide); err != nil {
		return err
	}
	if err := e.pots[to].CombineIn(update, factor.OpProduct); err != nil {
		return err
	}
	e.seps[k] = newSep
	e.cfg.log.Debug("hugin absorb",
		zap.Int("from", int(from)), zap.Int("to", int(to)),
		zap.Int("separatorSize", sepDomain.Len()))

	return nil
}

// Calibrate clones the tree potentials into working state and runs the
// collect and distribute passes. All prior working state is discarded.
// Complexity: O(E · clique table size).
func (e *Hugin) Calibrate() error {
	if e.tree.State() != juntree.StatePopulated {
		return fmt.Errorf("inference: calibrate: %w", juntree.ErrNotPopulated)
	}
	e.calibrated = false
	e.norm = 0

	ids := e.tree.Cliques()
	e.pots = make(map[juntree.CliqueID]*factor.TableFactor, len(ids))
	for _, id := range ids {
		pot, err := e.tree.Potential(id)
		if err != nil {
			return err
		}
		e.pots[id] = pot.Clone()
	}
	e.seps = make(map[pairKey]*factor.TableFactor, e.tree.NumEdges())
	for _, id := range ids {
		nbrs, _ := e.tree.Neighbors(id)
		for _, n := range nbrs {
			if id < n {
				sp, err := e.tree.SeparatorPotential(id, n)
				if err != nil {
					return err
				}
				e.seps[pairOf(id, n)] = sp.Clone()
			}
		}
	}

	order, parent := treeOrder(e.tree)
	for i := len(order) - 1; i >= 1; i-- {
		if err := e.absorb(order[i], parent[order[i]]); err != nil {
			return err
		}
	}
	for _, u := range order[1:] {
		if err := e.absorb(parent[u], u); err != nil {
			return err
		}
	}

	e.calVersion = e.tree.Version()
	e.calibrated = true

	return nil
}

// CliqueBelief returns a copy of the working potential, which after
// calibration is the clique's belief.
func (e *Hugin) CliqueBelief(id juntree.CliqueID) (*factor.TableFactor, error) {
	if !e.fresh() {
		return nil, fmt.Errorf("inference: clique %d belief: %w", id, ErrNotCalibrated)
	}
	pot, ok := e.pots[id]
	if !ok {
		return nil, fmt.Errorf("inference: clique %d: %w", id, juntree.ErrUnknownClique)
	}
	belief := pot.Clone()
	if e.norm > 0 {
		belief.Apply(func(x float64) float64 { return x / e.norm })
	}

	return belief, nil
}

// CliqueBeliefs returns the belief of every clique.
func (e *Hugin) CliqueBeliefs() (map[juntree.CliqueID]*factor.TableFactor, error) {
	out := make(map[juntree.CliqueID]*factor.TableFactor, len(e.pots))
	for _, id := range e.tree.Cliques() {
		b, err := e.CliqueBelief(id)
		if err != nil {
			return nil, err
		}
		out[id] = b
	}

	return out, nil
}

// SeparatorBelief returns a copy of the working separator of edge a-b.
func (e *Hugin) SeparatorBelief(a, b juntree.CliqueID) (*factor.TableFactor, error) {
	if !e.fresh() {
		return nil, fmt.Errorf("inference: separator %d-%d belief: %w", a, b, ErrNotCalibrated)
	}
	sp, ok := e.seps[pairOf(a, b)]
	if !ok {
		return nil, fmt.Errorf("inference: separator %d-%d: %w", a, b, juntree.ErrNoEdge)
	}
	belief := sp.Clone()
	if e.norm > 0 {
		belief.Apply(func(x float64) float64 { return x / e.norm })
	}

	return belief, nil
}

// Belief returns the marginal belief over an arbitrary domain, via the
// smallest covering clique or the elimination fallback.
func (e *Hugin) Belief(d core.Domain) (*factor.TableFactor, error) {
	if !e.fresh() {
		return nil, fmt.Errorf("inference: belief %v: %w", d, ErrNotCalibrated)
	}
	if id, err := e.tree.CoveringClique(d); err == nil {
		b, err := e.CliqueBelief(id)
		if err != nil {
			return nil, err
		}
		return b.Marginal(d)
	}

	covered := core.NewDomain()
	for _, id := range e.tree.Cliques() {
		cd, _ := e.tree.Clique(id)
		covered = covered.Union(cd)
	}
	if !covered.Includes(d) {
		return nil, fmt.Errorf("inference: belief %v: %w", d, ErrNoCoveringClique)
	}

	e.cfg.log.Debug("belief falls back to variable elimination", zap.Int("domainSize", d.Len()))
	pots, err := treePotentials(e.tree)
	if err != nil {
		return nil, err
	}
	b, err := VariableElimination(pots, d, juntree.MinDegree{})
	if err != nil {
		return nil, err
	}
	if e.norm > 0 {
		b.Apply(func(x float64) float64 { return x / e.norm })
	}

	return b, nil
}

// PartitionFunction returns the normalization constant of the joint.
func (e *Hugin) PartitionFunction() (float64, error) {
	if !e.fresh() {
		return 0, fmt.Errorf("inference: partition function: %w", ErrNotCalibrated)
	}
	if e.norm > 0 {
		return e.norm, nil
	}
	root := e.tree.Cliques()[0]
	b, err := e.CliqueBelief(root)
	if err != nil {
		return 0, err
	}

	return partition(b)
}

// Normalize makes every subsequent belief a proper distribution.
func (e *Hugin) Normalize() error {
	z, err := e.PartitionFunction()
	if err != nil {
		return err
	}
	e.norm = z

	return nil
}
