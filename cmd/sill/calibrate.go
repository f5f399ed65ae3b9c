package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/inference"
	"github.com/Matt3164/sill/juntree"
	"github.com/Matt3164/sill/model"
)

// engine is the common surface of the two calibration engines.
type engine interface {
	Calibrate() error
	Normalize() error
	Belief(core.Domain) (*factor.TableFactor, error)
	PartitionFunction() (float64, error)
}

func newCalibrateCmd(verbose *bool) *cobra.Command {
	var (
		engineName string
		strategy   string
		evidence   []string
	)

	cmd := &cobra.Command{
		Use:   "calibrate <model.yaml>",
		Short: "Build a junction tree for a model and print per-variable marginals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalibrate(args[0], engineName, strategy, evidence, *verbose)
		},
	}
	cmd.Flags().StringVar(&engineName, "engine", "shafer-shenoy", "calibration engine: shafer-shenoy or hugin")
	cmd.Flags().StringVar(&strategy, "strategy", "min-degree", "elimination strategy: min-degree or min-fill")
	cmd.Flags().StringArrayVar(&evidence, "evidence", nil, "observed value as var=val (repeatable)")

	return cmd
}

// parseEvidence resolves var=val pairs against the model's variables.
func parseEvidence(m *model.MarkovNetwork, pairs []string) (core.Assignment, error) {
	byName := make(map[string]*core.Variable)
	for _, v := range m.Vars() {
		byName[v.Name()] = v
	}
	a := make(core.Assignment, len(pairs))
	for _, p := range pairs {
		name, valStr, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("evidence %q: want var=val", p)
		}
		v, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("evidence %q: %w", name, model.ErrUnknownName)
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			return nil, fmt.Errorf("evidence %q: %v", p, err)
		}
		if val < 0 || val >= v.Arity() {
			return nil, fmt.Errorf("evidence %q: value outside arity %d", p, v.Arity())
		}
		a[v] = val
	}

	return a, nil
}

func runCalibrate(path, engineName, strategyName string, evidence []string, verbose bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	m, _, err := model.LoadYAML(file)
	if err != nil {
		return err
	}
	obs, err := parseEvidence(m, evidence)
	if err != nil {
		return err
	}

	var strategy juntree.EliminationStrategy
	switch strategyName {
	case "min-degree":
		strategy = juntree.MinDegree{}
	case "min-fill":
		strategy = juntree.MinFill{}
	default:
		return fmt.Errorf("unknown strategy %q", strategyName)
	}

	tree, err := juntree.Build(m.Domains(), strategy)
	if err != nil {
		return err
	}
	if err := tree.Populate(m.Factors()); err != nil {
		return err
	}
	if len(obs) > 0 {
		if err := tree.Condition(obs); err != nil {
			return err
		}
	}

	log := zap.NewNop()
	if verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer log.Sync()
	}

	var eng engine
	switch engineName {
	case "shafer-shenoy":
		eng, err = inference.NewShaferShenoy(tree, inference.WithLogger(log))
	case "hugin":
		eng, err = inference.NewHugin(tree, inference.WithLogger(log))
	default:
		return fmt.Errorf("unknown engine %q", engineName)
	}
	if err != nil {
		return err
	}
	if err := eng.Calibrate(); err != nil {
		return err
	}
	if err := eng.Normalize(); err != nil {
		return err
	}

	z, err := eng.PartitionFunction()
	if err != nil {
		return err
	}
	header := color.New(color.FgGreen, color.Bold)
	varName := color.New(color.FgCyan)
	header.Printf("calibrated %d cliques (%s, %s), Z = %g\n",
		tree.NumCliques(), engineName, strategyName, z)

	for _, v := range m.Vars() {
		if _, observed := obs[v]; observed {
			fmt.Printf("%s = %d (observed)\n", varName.Sprint(v.Name()), obs[v])
			continue
		}
		b, err := eng.Belief(core.NewDomain(v))
		if err != nil {
			return err
		}
		cells := make([]string, 0, v.Arity())
		for _, p := range b.Values() {
			cells = append(cells, fmt.Sprintf("%.6f", p))
		}
		fmt.Printf("P(%s) = [%s]\n", varName.Sprint(v.Name()), strings.Join(cells, " "))
	}

	return nil
}
