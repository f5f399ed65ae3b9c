package model

import "errors"

// Sentinel errors for model assembly and loading.
var (
	// ErrBadModel indicates a structurally invalid model file or
	// generator input (wrong grid size, factor over no variables).
	ErrBadModel = errors.New("model: invalid model")

	// ErrDuplicateName indicates two variables with the same name in
	// one model file.
	ErrDuplicateName = errors.New("model: duplicate variable name")

	// ErrUnknownName indicates a factor referencing a variable the file
	// never declared.
	ErrUnknownName = errors.New("model: unknown variable name")
)
