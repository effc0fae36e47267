package tree

import (
	"fmt"
	"log/slog"
	"os"

	yaml "gopkg.in/yaml.v2"
)

/*
Params holds the tree-level settings of the induction algorithm.
*/
type Params struct {
	// MultiValued allows variables with many values (relative to the
	// number of training cases) to take part in the average gain.
	MultiValued bool `yaml:"multi_valued"`
	// AvgainWeight scales the average gain in the minimum gain a
	// variable must reach on the first selection pass.
	AvgainWeight float64 `yaml:"avgain_weight"`
	// MDLWeight scales the minimum description length penalty in the
	// same minimum gain.
	MDLWeight float64 `yaml:"mdl_weight"`
	// DefaultHit is the classification of leaves no training
	// configuration reached.
	DefaultHit bool `yaml:"default_hit"`
}

// DefaultParams returns the parameters used when none are given.
func DefaultParams() Params {
	return Params{
		AvgainWeight: 1.0,
		MDLWeight:    1.0,
	}
}

/*
ReadParams takes a slice of bytes with parameters in YAML and returns them
or an error. Settings missing from the document keep their default value.
*/
func ReadParams(b []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return Params{}, fmt.Errorf("parsing yml params: %w", err)
	}
	return p, nil
}

/*
ReadParamsFromFile takes a filepath string, reads its contents and uses
ReadParams to return the parameters in it or an error.
*/
func ReadParamsFromFile(filepath string) (Params, error) {
	b, err := os.ReadFile(filepath)
	if err != nil {
		return Params{}, fmt.Errorf("reading params yml file %s: %w", filepath, err)
	}
	p, err := ReadParams(b)
	if err != nil {
		return Params{}, fmt.Errorf("parsing params yml file %s: %w", filepath, err)
	}
	return p, nil
}

// Option configures a Tree.
type Option func(*Tree)

// WithParams sets the induction parameters.
func WithParams(p Params) Option {
	return func(t *Tree) {
		t.params = p
	}
}

// WithLogger sets the logger build progress is reported to.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetrics sets the metrics updated while building.
func WithMetrics(m *Metrics) Option {
	return func(t *Tree) {
		t.metrics = m
	}
}
