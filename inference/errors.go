package inference

import "errors"

// Sentinel errors for the calibration engines.
var (
	// ErrNotCalibrated indicates a belief query on an engine that has
	// not calibrated since the tree last changed.
	ErrNotCalibrated = errors.New("inference: engine is not calibrated")

	// ErrNoCoveringClique indicates a belief query over variables the
	// tree does not carry.
	ErrNoCoveringClique = errors.New("inference: no clique covers the queried domain")

	// ErrNilTree indicates an engine constructed over a nil tree.
	ErrNilTree = errors.New("inference: nil junction tree")
)
