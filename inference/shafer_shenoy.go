package inference

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/juntree"
)

// ShaferShenoy calibrates a junction tree without mutating its
// potentials: one message is cached per directed edge, and beliefs are
// assembled on demand as potential × incoming messages.
type ShaferShenoy struct {
	tree *juntree.Tree
	cfg  config

	msgs       map[directedEdge]*factor.TableFactor
	calVersion uint64
	calibrated bool
	norm       float64 // partition function after Normalize, else 0
}

// NewShaferShenoy creates the engine over a populated tree. Returns
// juntree.ErrNotPopulated otherwise.
func NewShaferShenoy(t *juntree.Tree, opts ...Option) (*ShaferShenoy, error) {
	if t == nil {
		return nil, ErrNilTree
	}
	if t.State() != juntree.StatePopulated {
		return nil, fmt.Errorf("inference: Shafer-Shenoy over %v tree: %w", t.State(), juntree.ErrNotPopulated)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ShaferShenoy{tree: t, cfg: cfg}, nil
}

// fresh reports whether the cached messages match the tree's current
// contents.
func (e *ShaferShenoy) fresh() bool {
	return e.calibrated && e.calVersion == e.tree.Version()
}

// sendMessage computes and caches message(from→to): the separator
// marginal of potential(from) times every message into from except
// to's.
func (e *ShaferShenoy) sendMessage(from, to juntree.CliqueID) error {
	pot, err := e.tree.Potential(from)
	if err != nil {
		return err
	}
	prod := pot.Clone()
	nbrs, err := e.tree.Neighbors(from)
	if err != nil {
		return err
	}
	for _, w := range nbrs {
		if w == to {
			continue
		}
		if err := prod.CombineIn(e.msgs[directedEdge{w, from}], factor.OpProduct); err != nil {
			return err
		}
	}
	sep, err := e.tree.Separator(from, to)
	if err != nil {
		return err
	}
	msg, err := prod.Marginal(sep)
	if err != nil {
		return err
	}
	e.msgs[directedEdge{from, to}] = msg
	e.cfg.log.Debug("shafer-shenoy message",
		zap.Int("from", int(from)), zap.Int("to", int(to)),
		zap.Int("separatorSize", sep.Len()))

	return nil
}

// Calibrate recomputes every message in two passes: collect toward the
// lowest-ID root, then distribute back out. All previous messages are
// discarded, whatever changed.
// Complexity: O(E · clique table size).
func (e *ShaferShenoy) Calibrate() error {
	if e.tree.State() != juntree.StatePopulated {
		return fmt.Errorf("inference: calibrate: %w", juntree.ErrNotPopulated)
	}
	e.msgs = make(map[directedEdge]*factor.TableFactor, 2*e.tree.NumEdges())
	e.calibrated = false
	e.norm = 0

	order, parent := treeOrder(e.tree)
	for i := len(order) - 1; i >= 1; i-- {
		if err := e.sendMessage(order[i], parent[order[i]]); err != nil {
			return err
		}
	}
	for _, u := range order[1:] {
		if err := e.sendMessage(parent[u], u); err != nil {
			return err
		}
	}

	e.calVersion = e.tree.Version()
	e.calibrated = true

	return nil
}

// CliqueBelief returns the belief of one clique: the (unnormalized,
// unless Normalize ran) marginal of the joint over the clique domain.
// ErrNotCalibrated when the tree changed since Calibrate.
func (e *ShaferShenoy) CliqueBelief(id juntree.CliqueID) (*factor.TableFactor, error) {
	if !e.fresh() {
		return nil, fmt.Errorf("inference: clique %d belief: %w", id, ErrNotCalibrated)
	}
	pot, err := e.tree.Potential(id)
	if err != nil {
		return nil, err
	}
	belief := pot.Clone()
	nbrs, err := e.tree.Neighbors(id)
	if err != nil {
		return nil, err
	}
	for _, w := range nbrs {
		if err := belief.CombineIn(e.msgs[directedEdge{w, id}], factor.OpProduct); err != nil {
			return nil, err
		}
	}
	if e.norm > 0 {
		belief.Apply(func(x float64) float64 { return x / e.norm })
	}

	return belief, nil
}

// CliqueBeliefs returns the belief of every clique.
func (e *ShaferShenoy) CliqueBeliefs() (map[juntree.CliqueID]*factor.TableFactor, error) {
	out := make(map[juntree.CliqueID]*factor.TableFactor, e.tree.NumCliques())
	for _, id := range e.tree.Cliques() {
		b, err := e.CliqueBelief(id)
		if err != nil {
			return nil, err
		}
		out[id] = b
	}

	return out, nil
}

// SeparatorBelief returns the belief over the separator of edge a-b:
// the product of the two opposing messages.
func (e *ShaferShenoy) SeparatorBelief(a, b juntree.CliqueID) (*factor.TableFactor, error) {
	if !e.fresh() {
		return nil, fmt.Errorf("inference: separator %d-%d belief: %w", a, b, ErrNotCalibrated)
	}
	ab, ok := e.msgs[directedEdge{a, b}]
	if !ok {
		return nil, fmt.Errorf("inference: separator %d-%d: %w", a, b, juntree.ErrNoEdge)
	}
	belief, err := factor.Combine(ab, e.msgs[directedEdge{b, a}], factor.OpProduct)
	if err != nil {
		return nil, err
	}
	if e.norm > 0 {
		belief.Apply(func(x float64) float64 { return x / e.norm })
	}

	return belief, nil
}

// Belief returns the marginal belief over an arbitrary domain. The
// smallest covering clique answers directly; a domain split across
// cliques falls back to variable elimination over the tree potentials.
// ErrNoCoveringClique when the tree does not carry all queried
// variables.
func (e *ShaferShenoy) Belief(d core.Domain) (*factor.TableFactor, error) {
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

// PartitionFunction returns the normalization constant of the joint
// (the sum any single clique belief integrates to).
func (e *ShaferShenoy) PartitionFunction() (float64, error) {
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

// Normalize makes every subsequent belief a proper distribution by
// dividing out the partition function. ErrNonNormalizable (wrapped)
// when the constant is zero or not finite, as after contradictory
// evidence.
func (e *ShaferShenoy) Normalize() error {
	z, err := e.PartitionFunction()
	if err != nil {
		return err
	}
	e.norm = z

	return nil
}
