package model

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
)

type yamlVariable struct {
	Name  string `yaml:"name"`
	Arity int    `yaml:"arity"`
}

type yamlFactor struct {
	Vars   []string  `yaml:"vars"`
	Values []float64 `yaml:"values"`
}

type yamlModel struct {
	Variables []yamlVariable `yaml:"variables"`
	Factors   []yamlFactor   `yaml:"factors"`
}

// LoadYAML reads a model file (see the package doc for the format) and
// returns the network together with the universe its variables live in.
// Factor values are in linear cell order, first listed variable
// fastest. Returns ErrDuplicateName, ErrUnknownName, or ErrBadModel on
// structural problems; arity and value-count violations surface as the
// core/factor sentinels.
func LoadYAML(r io.Reader) (*MarkovNetwork, *core.Universe, error) {
	var doc yamlModel
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("model: decode: %w", err)
	}
	if len(doc.Variables) == 0 {
		return nil, nil, fmt.Errorf("model: no variables declared: %w", ErrBadModel)
	}

	u := core.NewUniverse()
	byName := make(map[string]*core.Variable, len(doc.Variables))
	vars := make([]*core.Variable, 0, len(doc.Variables))
	for _, yv := range doc.Variables {
		if _, dup := byName[yv.Name]; dup {
			return nil, nil, fmt.Errorf("model: variable %q: %w", yv.Name, ErrDuplicateName)
		}
		v, err := u.NewVariable(yv.Name, yv.Arity)
		if err != nil {
			return nil, nil, err
		}
		byName[yv.Name] = v
		vars = append(vars, v)
	}

	m := NewMarkovNetwork(vars)
	for i, yf := range doc.Factors {
		if len(yf.Vars) == 0 {
			return nil, nil, fmt.Errorf("model: factor %d has no variables: %w", i, ErrBadModel)
		}
		args := make([]*core.Variable, 0, len(yf.Vars))
		for _, name := range yf.Vars {
			v, ok := byName[name]
			if !ok {
				return nil, nil, fmt.Errorf("model: factor %d references %q: %w", i, name, ErrUnknownName)
			}
			args = append(args, v)
		}
		f, err := factor.FromValues(args, yf.Values)
		if err != nil {
			return nil, nil, fmt.Errorf("model: factor %d: %w", i, err)
		}
		if err := m.AddFactor(f); err != nil {
			return nil, nil, err
		}
	}

	return m, u, nil
}
