/*
Package dataset provides Set, a collection of configurations labeled by
whether they hit a coverage target.
*/
package dataset

import (
	"fmt"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/domain"
)

/*
Set holds the configurations observed for a coverage target, partitioned
into those that hit it and those that missed it.
*/
type Set struct {
	Hits   []*config.Config
	Misses []*config.Config
}

// New returns a set with the given hit and miss configurations.
func New(hits, misses []*config.Config) *Set {
	return &Set{Hits: hits, Misses: misses}
}

// Add appends the config to the hit or miss partition.
func (s *Set) Add(c *config.Config, hit bool) {
	if hit {
		s.Hits = append(s.Hits, c)
	} else {
		s.Misses = append(s.Misses, c)
	}
}

// Count returns the total number of configurations in the set.
func (s *Set) Count() int {
	return len(s.Hits) + len(s.Misses)
}

/*
Each calls f with every configuration of the set and its label, hits
first, stopping at the first error f returns.
*/
func (s *Set) Each(f func(c *config.Config, hit bool) error) error {
	for _, c := range s.Hits {
		if err := f(c, true); err != nil {
			return err
		}
	}
	for _, c := range s.Misses {
		if err := f(c, false); err != nil {
			return err
		}
	}
	return nil
}

/*
Validate returns an error unless every configuration in the set fits the
domain and assigns a value to every variable.
*/
func (s *Set) Validate(d *domain.Domain) error {
	i := 0
	return s.Each(func(c *config.Config, hit bool) error {
		defer func() { i++ }()
		if err := c.Validate(d); err != nil {
			return fmt.Errorf("config %d: %w", i, err)
		}
		if !c.IsComplete() {
			return fmt.Errorf("config %d: unset variables in %s", i, c.Format(d))
		}
		return nil
	})
}
