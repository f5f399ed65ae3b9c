package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
)

// MarkovNetwork is an undirected model: a variable set and a list of
// potentials over subsets of it. The factor list is open (node, edge,
// or higher-order potentials all welcome); the represented joint is the
// normalized product of all potentials.
type MarkovNetwork struct {
	vars    []*core.Variable
	varSet  core.Domain
	factors []*factor.TableFactor
}

// NewMarkovNetwork creates an empty network over the given variables.
func NewMarkovNetwork(vars []*core.Variable) *MarkovNetwork {
	return &MarkovNetwork{
		vars:   append([]*core.Variable(nil), vars...),
		varSet: core.NewDomain(vars...),
	}
}

// Vars returns the network's variables in declaration order.
func (m *MarkovNetwork) Vars() []*core.Variable {
	return append([]*core.Variable(nil), m.vars...)
}

// NumFactors returns the number of potentials.
func (m *MarkovNetwork) NumFactors() int { return len(m.factors) }

// AddFactor attaches a potential; its arguments must all belong to the
// network.
func (m *MarkovNetwork) AddFactor(f *factor.TableFactor) error {
	if !m.varSet.Includes(f.Args()) {
		return fmt.Errorf("model: factor %v outside network %v: %w", f.Args(), m.varSet, ErrUnknownName)
	}
	m.factors = append(m.factors, f)

	return nil
}

// SetNodePotential attaches a single-variable potential on v.
func (m *MarkovNetwork) SetNodePotential(v *core.Variable, values []float64) error {
	f, err := factor.FromValues([]*core.Variable{v}, values)
	if err != nil {
		return err
	}

	return m.AddFactor(f)
}

// SetEdgePotential attaches a pairwise potential on (a, b), values in
// linear order with a fastest.
func (m *MarkovNetwork) SetEdgePotential(a, b *core.Variable, values []float64) error {
	f, err := factor.FromValues([]*core.Variable{a, b}, values)
	if err != nil {
		return err
	}

	return m.AddFactor(f)
}

// Factors returns the potential list (fresh slice, shared factors).
func (m *MarkovNetwork) Factors() []*factor.TableFactor {
	return append([]*factor.TableFactor(nil), m.factors...)
}

// Domains returns the argument set of every potential: the direct input
// to juntree.Build.
func (m *MarkovNetwork) Domains() []core.Domain {
	out := make([]core.Domain, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Args()
	}

	return out
}

// Condition returns the network with the assigned variables fixed:
// every potential is restricted (scalar leftovers kept, so the
// partition function of the evidence survives) and the assigned
// variables leave the variable set.
func (m *MarkovNetwork) Condition(a core.Assignment) (*MarkovNetwork, error) {
	keep := make([]*core.Variable, 0, len(m.vars))
	for _, v := range m.vars {
		if _, ok := a[v]; !ok {
			keep = append(keep, v)
		}
	}
	out := NewMarkovNetwork(keep)
	for _, f := range m.factors {
		r, err := f.Restrict(a)
		if err != nil {
			return nil, err
		}
		out.factors = append(out.factors, r)
	}

	return out, nil
}

// GridNetwork creates the rows×cols pairwise 4-neighborhood structure
// over the given variables (row-major), with no potentials attached
// yet. Returns ErrBadModel when len(vars) != rows*cols; EdgeList gives
// the generated adjacency.
func GridNetwork(vars []*core.Variable, rows, cols int) (*MarkovNetwork, [][2]*core.Variable, error) {
	if rows < 1 || cols < 1 || len(vars) != rows*cols {
		return nil, nil, fmt.Errorf("model: %d variables for a %dx%d grid: %w",
			len(vars), rows, cols, ErrBadModel)
	}
	m := NewMarkovNetwork(vars)
	edges := make([][2]*core.Variable, 0, rows*(cols-1)+(rows-1)*cols)
	at := func(r, c int) *core.Variable { return vars[r*cols+c] }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				edges = append(edges, [2]*core.Variable{at(r, c), at(r, c+1)})
			}
			if r+1 < rows {
				edges = append(edges, [2]*core.Variable{at(r, c), at(r+1, c)})
			}
		}
	}

	return m, edges, nil
}

// RandomIsing creates a rows×cols binary grid with node and edge
// potentials exp(θ), θ drawn Uniform(-strength, strength) per cell:
// the standard random fixture for calibration cross-checks. Variables
// are allocated in u as "sRC".
func RandomIsing(u *core.Universe, rows, cols int, rng *rand.Rand, strength float64) (*MarkovNetwork, error) {
	vars := make([]*core.Variable, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v, err := u.NewVariable(fmt.Sprintf("s%d%d", r, c), 2)
			if err != nil {
				return nil, err
			}
			vars = append(vars, v)
		}
	}
	m, edges, err := GridNetwork(vars, rows, cols)
	if err != nil {
		return nil, err
	}

	draw := func() float64 {
		return math.Exp((2*rng.Float64() - 1) * strength)
	}
	for _, v := range vars {
		if err := m.SetNodePotential(v, []float64{draw(), draw()}); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := m.SetEdgePotential(e[0], e[1],
			[]float64{draw(), draw(), draw(), draw()}); err != nil {
			return nil, err
		}
	}

	return m, nil
}
