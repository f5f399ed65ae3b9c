// Package inference implements exact sum-product inference over
// junction trees: the Shafer-Shenoy and Hugin calibration engines, plus
// plain variable elimination for cross-checks and out-of-clique
// queries.
//
// Engines
//
//	Both engines take a Populated juntree.Tree and compute, for every
//	clique, the unnormalized marginal of the joint over that clique's
//	domain (its belief). Calibrate runs the classic two passes: collect
//	messages from the leaves to a root, then distribute back out. After
//	calibration every clique belief and every separator belief agree on
//	their shared variables.
//
//	ShaferShenoy keeps the tree potentials immutable and caches one
//	message per directed edge; message(u→v) is the separator marginal
//	of potential(u) times every message into u except v's.
//
//	Hugin works on in-place copies of the potentials: passing a message
//	multiplies the receiver by newSep ⊘ oldSep (safe divide), so after
//	both passes the working potentials ARE the beliefs. Both engines
//	agree within 1e-10 on the same tree.
//
// Staleness
//
//	Engines record the tree's change counter when they calibrate. Any
//	later mutation (SetPotential, Condition, a structural edit)
//	advances the counter, and belief queries fail with ErrNotCalibrated
//	until Calibrate runs again. Invalidation is engine-wide: a single
//	dirty clique recomputes everything.
//
// Queries
//
//	CliqueBelief(id), CliqueBeliefs(), and Belief(domain): the latter
//	marginalizes the smallest covering clique, falling back to variable
//	elimination over the tree potentials when no single clique covers
//	the queried domain.
//
// Errors:
//
//	ErrNotCalibrated     - belief query before (re-)calibration.
//	ErrNoCoveringClique  - Belief on a domain with variables absent from
//	                       every clique of the tree.
//	juntree.ErrNotPopulated is passed through for unpopulated trees.
package inference
