// Package model assembles factor collections into Markov networks: the
// input side of the inference pipeline.
//
// MarkovNetwork is a variable set plus an open list of potentials
// (node, edge, or higher-order); Factors() and Domains() feed directly
// into juntree.Build and Tree.Populate. Condition(a) folds evidence in
// at the model level, returning a reduced network over the remaining
// variables.
//
// Generators:
//
//   - GridNetwork — rows×cols pairwise grid structure (4-neighborhood)
//   - RandomIsing — binary grid with node and edge potentials
//     exp(θ), θ ~ Uniform(-strength, strength): the standard stress
//     fixture for calibration cross-checks
//
// LoadYAML reads a human-authored model file:
//
//	variables:
//	  - {name: rain, arity: 2}
//	  - {name: wet, arity: 2}
//	factors:
//	  - {vars: [rain], values: [0.8, 0.2]}
//	  - {vars: [wet, rain], values: [0.9, 0.1, 0.05, 0.95]}
//
// Values are in linear cell order, first listed variable fastest.
//
// Errors:
//
//	ErrBadModel       - structurally invalid model file or generator input.
//	ErrDuplicateName  - two variables sharing a name in one model file.
//	ErrUnknownName    - a factor referencing an undeclared variable.
package model
