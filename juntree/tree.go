package juntree

import (
	"fmt"
	"sort"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
)

// CliqueID is a dense handle to a clique within one Tree. IDs are never
// reused; removed cliques leave gaps.
type CliqueID int

// State is the tree lifecycle stage.
type State int

const (
	// StateUnbuilt means the structure is under edit and unvalidated.
	StateUnbuilt State = iota
	// StateStructural means Validate has passed since the last edit.
	StateStructural
	// StatePopulated means every clique and separator holds a potential.
	StatePopulated
)

// String names the state for diagnostics.
func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateStructural:
		return "structural"
	case StatePopulated:
		return "populated"
	default:
		return "invalid"
	}
}

type clique struct {
	domain    core.Domain
	pot       *factor.TableFactor
	neighbors map[CliqueID]struct{}
}

type separator struct {
	domain core.Domain
	pot    *factor.TableFactor
}

// edgeKey is the unordered pair (a, b) with a < b.
type edgeKey struct{ a, b CliqueID }

func keyOf(a, b CliqueID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Tree is a junction tree under construction or use. Not safe for
// concurrent mutation; calibration engines hold it exclusively.
type Tree struct {
	cliques map[CliqueID]*clique
	seps    map[edgeKey]*separator
	nextID  CliqueID
	state   State

	// version increments on every structural or potential change;
	// engines compare it against the version they last calibrated.
	version uint64

	validateEdges bool
}

// NewTree creates an empty tree in the Unbuilt state.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		cliques: make(map[CliqueID]*clique),
		seps:    make(map[edgeKey]*separator),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// State returns the lifecycle stage.
func (t *Tree) State() State { return t.state }

// Version returns the change counter; any structural or potential
// mutation increments it.
func (t *Tree) Version() uint64 { return t.version }

// NumCliques returns the number of cliques.
func (t *Tree) NumCliques() int { return len(t.cliques) }

// NumEdges returns the number of edges.
func (t *Tree) NumEdges() int { return len(t.seps) }

func (t *Tree) touch(next State) {
	t.state = next
	t.version++
}

// AddClique inserts a clique over the given domain (copied) and returns
// its handle. The tree drops back to Unbuilt.
func (t *Tree) AddClique(d core.Domain) CliqueID {
	id := t.nextID
	t.nextID++
	t.cliques[id] = &clique{
		domain:    d.Clone(),
		neighbors: make(map[CliqueID]struct{}),
	}
	t.touch(StateUnbuilt)

	return id
}

func (t *Tree) clique(id CliqueID) (*clique, error) {
	c, ok := t.cliques[id]
	if !ok {
		return nil, fmt.Errorf("juntree: clique %d: %w", id, ErrUnknownClique)
	}

	return c, nil
}

// Clique returns a copy of the clique's domain.
func (t *Tree) Clique(id CliqueID) (core.Domain, error) {
	c, err := t.clique(id)
	if err != nil {
		return nil, err
	}

	return c.domain.Clone(), nil
}

// Cliques returns all clique handles in ascending order.
func (t *Tree) Cliques() []CliqueID {
	out := make([]CliqueID, 0, len(t.cliques))
	for id := range t.cliques {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Neighbors returns the cliques adjacent to id in ascending order.
func (t *Tree) Neighbors(id CliqueID) ([]CliqueID, error) {
	c, err := t.clique(id)
	if err != nil {
		return nil, err
	}
	out := make([]CliqueID, 0, len(c.neighbors))
	for n := range c.neighbors {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

// HasEdge reports whether a and b are adjacent.
func (t *Tree) HasEdge(a, b CliqueID) bool {
	_, ok := t.seps[keyOf(a, b)]
	return ok
}

// AddEdge connects two cliques; the separator is their domain
// intersection (possibly empty). Returns ErrSelfLoop, ErrUnknownClique
// or ErrEdgeExists on contract violations. With WithEdgeValidation the
// running-intersection property is checked immediately and the edge is
// rolled back on ErrRIPViolated; otherwise validation waits for
// Validate(). The tree drops back to Unbuilt.
func (t *Tree) AddEdge(a, b CliqueID) error {
	if a == b {
		return fmt.Errorf("juntree: edge %d-%d: %w", a, b, ErrSelfLoop)
	}
	ca, err := t.clique(a)
	if err != nil {
		return err
	}
	cb, err := t.clique(b)
	if err != nil {
		return err
	}
	k := keyOf(a, b)
	if _, ok := t.seps[k]; ok {
		return fmt.Errorf("juntree: edge %d-%d: %w", a, b, ErrEdgeExists)
	}

	t.seps[k] = &separator{domain: ca.domain.Intersect(cb.domain)}
	ca.neighbors[b] = struct{}{}
	cb.neighbors[a] = struct{}{}

	if t.validateEdges {
		if err := t.checkRIP(); err != nil {
			delete(t.seps, k)
			delete(ca.neighbors, b)
			delete(cb.neighbors, a)
			return fmt.Errorf("juntree: edge %d-%d: %w", a, b, err)
		}
	}
	t.touch(StateUnbuilt)

	return nil
}

// RemoveEdge disconnects two cliques. The tree drops back to Unbuilt.
func (t *Tree) RemoveEdge(a, b CliqueID) error {
	k := keyOf(a, b)
	if _, ok := t.seps[k]; !ok {
		return fmt.Errorf("juntree: edge %d-%d: %w", a, b, ErrNoEdge)
	}
	delete(t.seps, k)
	delete(t.cliques[a].neighbors, b)
	delete(t.cliques[b].neighbors, a)
	t.touch(StateUnbuilt)

	return nil
}

// RemoveClique deletes a clique. A clique with incident edges is
// refused unless cascade is set, in which case its edges go with it.
// The tree drops back to Unbuilt.
func (t *Tree) RemoveClique(id CliqueID, cascade bool) error {
	c, err := t.clique(id)
	if err != nil {
		return err
	}
	if len(c.neighbors) > 0 && !cascade {
		return fmt.Errorf("juntree: clique %d has %d edges: %w", id, len(c.neighbors), ErrCliqueHasEdges)
	}
	for n := range c.neighbors {
		delete(t.seps, keyOf(id, n))
		delete(t.cliques[n].neighbors, id)
	}
	delete(t.cliques, id)
	t.touch(StateUnbuilt)

	return nil
}

// Separator returns a copy of the separator domain of edge a-b.
func (t *Tree) Separator(a, b CliqueID) (core.Domain, error) {
	s, ok := t.seps[keyOf(a, b)]
	if !ok {
		return nil, fmt.Errorf("juntree: edge %d-%d: %w", a, b, ErrNoEdge)
	}

	return s.domain.Clone(), nil
}

// reachable returns the cliques reachable from start by BFS.
func (t *Tree) reachable(start CliqueID) map[CliqueID]bool {
	seen := map[CliqueID]bool{start: true}
	queue := []CliqueID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for n := range t.cliques[cur].neighbors {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}

	return seen
}

// checkRIP verifies the running-intersection property: for every
// variable, the cliques containing it induce a connected subgraph.
func (t *Tree) checkRIP() error {
	byVar := make(map[*core.Variable][]CliqueID)
	for id, c := range t.cliques {
		for v := range c.domain {
			byVar[v] = append(byVar[v], id)
		}
	}
	for v, ids := range byVar {
		if len(ids) < 2 {
			continue
		}
		member := make(map[CliqueID]bool, len(ids))
		for _, id := range ids {
			member[id] = true
		}
		// BFS restricted to cliques (and separators) containing v.
		seen := map[CliqueID]bool{ids[0]: true}
		queue := []CliqueID{ids[0]}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for n := range t.cliques[cur].neighbors {
				if member[n] && !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		if len(seen) != len(ids) {
			return fmt.Errorf("juntree: variable %v spans a disconnected clique set: %w", v, ErrRIPViolated)
		}
	}

	return nil
}

// Validate checks that the structure is a tree (connected, acyclic)
// satisfying the running-intersection property. On success an Unbuilt
// tree advances to Structural; a Populated tree stays Populated.
func (t *Tree) Validate() error {
	if len(t.cliques) == 0 {
		return ErrEmptyTree
	}
	start := t.Cliques()[0]
	if reach := t.reachable(start); len(reach) != len(t.cliques) {
		return fmt.Errorf("juntree: %d of %d cliques reachable: %w", len(reach), len(t.cliques), ErrNotTree)
	}
	if len(t.seps) != len(t.cliques)-1 {
		return fmt.Errorf("juntree: %d edges over %d cliques: %w", len(t.seps), len(t.cliques), ErrNotTree)
	}
	if err := t.checkRIP(); err != nil {
		return err
	}
	if t.state == StateUnbuilt {
		t.state = StateStructural
	}

	return nil
}

// coveringClique returns the lowest-ID clique whose domain includes d.
func (t *Tree) coveringClique(d core.Domain) (CliqueID, bool) {
	for _, id := range t.Cliques() {
		if t.cliques[id].domain.Includes(d) {
			return id, true
		}
	}

	return 0, false
}

// CoveringClique returns the smallest-domain clique that includes d,
// breaking ties toward the lowest ID.
func (t *Tree) CoveringClique(d core.Domain) (CliqueID, error) {
	best, found := CliqueID(0), false
	for _, id := range t.Cliques() {
		c := t.cliques[id]
		if !c.domain.Includes(d) {
			continue
		}
		if !found || c.domain.Len() < t.cliques[best].domain.Len() {
			best, found = id, true
		}
	}
	if !found {
		return 0, fmt.Errorf("juntree: no clique covers %v: %w", d, ErrFactorNotCovered)
	}

	return best, nil
}

// Populate validates the structure if needed, then charges it with the
// model: every clique potential starts as the constant 1 over its
// domain, each input factor is multiplied into the lowest-ID covering
// clique, and every separator gets the constant 1 over its domain.
// Returns ErrFactorNotCovered when some factor fits no clique; the tree
// is left unpopulated then. On success the state is Populated.
func (t *Tree) Populate(factors []*factor.TableFactor) error {
	if t.state == StateUnbuilt {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	// Assign factors before touching any potential.
	homes := make([]CliqueID, len(factors))
	for i, f := range factors {
		id, ok := t.coveringClique(f.Args())
		if !ok {
			return fmt.Errorf("juntree: factor %v: %w", f.Args(), ErrFactorNotCovered)
		}
		homes[i] = id
	}

	for _, c := range t.cliques {
		pot, err := factor.New(c.domain.Vars(), 1)
		if err != nil {
			return err
		}
		c.pot = pot
	}
	for i, f := range factors {
		if err := t.cliques[homes[i]].pot.CombineIn(f, factor.OpProduct); err != nil {
			return err
		}
	}
	for _, s := range t.seps {
		pot, err := factor.New(s.domain.Vars(), 1)
		if err != nil {
			return err
		}
		s.pot = pot
	}
	t.touch(StatePopulated)

	return nil
}

// Potential returns the live clique potential (callers mutate through
// SetPotential, not through this pointer). ErrNotPopulated before
// Populate.
func (t *Tree) Potential(id CliqueID) (*factor.TableFactor, error) {
	c, err := t.clique(id)
	if err != nil {
		return nil, err
	}
	if t.state != StatePopulated {
		return nil, fmt.Errorf("juntree: clique %d potential: %w", id, ErrNotPopulated)
	}

	return c.pot, nil
}

// SetPotential replaces the clique potential with the constant 1 over
// the clique domain multiplied by f, whose arguments must be covered by
// the clique. The change counter advances, so engines recalibrate.
func (t *Tree) SetPotential(id CliqueID, f *factor.TableFactor) error {
	c, err := t.clique(id)
	if err != nil {
		return err
	}
	if t.state != StatePopulated {
		return fmt.Errorf("juntree: clique %d potential: %w", id, ErrNotPopulated)
	}
	if !c.domain.Includes(f.Args()) {
		return fmt.Errorf("juntree: clique %d %v cannot hold %v: %w",
			id, c.domain, f.Args(), ErrFactorNotCovered)
	}
	pot, err := factor.New(c.domain.Vars(), 1)
	if err != nil {
		return err
	}
	if err := pot.CombineIn(f, factor.OpProduct); err != nil {
		return err
	}
	c.pot = pot
	t.version++

	return nil
}

// SeparatorPotential returns the live separator potential of edge a-b.
func (t *Tree) SeparatorPotential(a, b CliqueID) (*factor.TableFactor, error) {
	s, ok := t.seps[keyOf(a, b)]
	if !ok {
		return nil, fmt.Errorf("juntree: edge %d-%d: %w", a, b, ErrNoEdge)
	}
	if t.state != StatePopulated {
		return nil, fmt.Errorf("juntree: edge %d-%d potential: %w", a, b, ErrNotPopulated)
	}

	return s.pot, nil
}

// Condition applies evidence to a populated tree: every clique and
// separator potential is restricted at the assigned variables, which
// are removed from the corresponding domains. The change counter
// advances, invalidating all cached messages downstream.
func (t *Tree) Condition(a core.Assignment) error {
	if t.state != StatePopulated {
		return fmt.Errorf("juntree: condition: %w", ErrNotPopulated)
	}
	for _, c := range t.cliques {
		pot, err := c.pot.Restrict(a)
		if err != nil {
			return err
		}
		c.pot = pot
		c.domain = pot.Args()
	}
	for _, s := range t.seps {
		pot, err := s.pot.Restrict(a)
		if err != nil {
			return err
		}
		s.pot = pot
		s.domain = pot.Args()
	}
	t.version++

	return nil
}

// Merge collapses the edge a-b into one clique over the union domain,
// reattaching the other neighbors of a and b with freshly computed
// separators. On a populated tree the merged potential is
// pot(a) ⊗ pot(b) ⊘ sep(a,b) (safe divide), which preserves the
// represented joint; the reattached separators reset to the constant 1
// and the change counter advances. Returns the new clique's handle.
func (t *Tree) Merge(a, b CliqueID) (CliqueID, error) {
	ca, err := t.clique(a)
	if err != nil {
		return 0, err
	}
	cb, err := t.clique(b)
	if err != nil {
		return 0, err
	}
	sep, ok := t.seps[keyOf(a, b)]
	if !ok {
		return 0, fmt.Errorf("juntree: merge %d-%d: %w", a, b, ErrNoEdge)
	}

	union := ca.domain.Union(cb.domain)
	var pot *factor.TableFactor
	if t.state == StatePopulated {
		prod, err := factor.Combine(ca.pot, cb.pot, factor.OpProduct)
		if err != nil {
			return 0, err
		}
		if err := prod.CombineIn(sep.pot, factor.OpDivide); err != nil {
			return 0, err
		}
		pot = prod
	}

	// Collect the outside neighbors before mutating the structure.
	outside := make(map[CliqueID]struct{})
	for n := range ca.neighbors {
		if n != b {
			outside[n] = struct{}{}
		}
	}
	for n := range cb.neighbors {
		if n != a {
			outside[n] = struct{}{}
		}
	}

	prev := t.state
	// Incremental RIP checks would see the half-rewired structure;
	// Validate() covers the final shape instead.
	saved := t.validateEdges
	t.validateEdges = false
	defer func() { t.validateEdges = saved }()
	if err := t.RemoveClique(a, true); err != nil {
		return 0, err
	}
	if err := t.RemoveClique(b, true); err != nil {
		return 0, err
	}
	id := t.AddClique(union)
	for n := range outside {
		if err := t.AddEdge(id, n); err != nil {
			return 0, err
		}
	}

	if prev == StatePopulated {
		t.cliques[id].pot = pot
		for n := range outside {
			s := t.seps[keyOf(id, n)]
			spot, err := factor.New(s.domain.Vars(), 1)
			if err != nil {
				return 0, err
			}
			s.pot = spot
		}
		t.state = StatePopulated
	} else if prev == StateStructural {
		// Merging an edge preserves tree-ness and the RIP.
		t.state = StateStructural
	}
	t.version++

	return id, nil
}
