package tree

import (
	"fmt"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/dataset"
)

/*
Classify takes a config and returns the classification of the leaf it
reaches and the number of training configurations that reached that leaf.
It returns an error if the config leaves unset a variable the tree needs.
*/
func (t *Tree) Classify(c *config.Config) (bool, int, error) {
	if len(t.nodes) == 0 {
		return false, 0, ErrNotBuilt
	}
	if c.Len() != t.dom.NVars() {
		return false, 0, fmt.Errorf("classifying config: %d variables, domain has %d", c.Len(), t.dom.NVars())
	}
	n := &t.nodes[0]
	for !n.IsLeaf() {
		val := c.Get(n.SplitVar)
		if val < 0 || val >= len(n.Children) {
			return false, 0, fmt.Errorf("classifying config: no value for variable %s", t.dom.Var(n.SplitVar).Name())
		}
		n = &t.nodes[n.Children[val]]
	}
	return t.LeafValue(n), n.Total(), nil
}

/*
Test takes a labeled set and returns the rate of its configurations the
tree classifies as labeled, and an error if any of them cannot be
classified.
*/
func (t *Tree) Test(s *dataset.Set) (float64, error) {
	if s.Count() == 0 {
		return 0.0, nil
	}
	var success int
	err := s.Each(func(c *config.Config, hit bool) error {
		predicted, _, err := t.Classify(c)
		if err != nil {
			return err
		}
		if predicted == hit {
			success++
		}
		return nil
	})
	if err != nil {
		return 0.0, err
	}
	return float64(success) / float64(s.Count()), nil
}

/*
GatherSmallLeaves returns a template config for every leaf reached by
between minConfs and maxConfs training configurations, both included. Each
template sets the variables split on along the path to its leaf and leaves
the rest unset, so it can seed the sampling of more configurations in that
under-explored region.
*/
func (t *Tree) GatherSmallLeaves(minConfs, maxConfs int) ([]*config.Config, error) {
	if len(t.nodes) == 0 {
		return nil, ErrNotBuilt
	}
	var res []*config.Config
	tpl := config.New(t.dom.NVars())
	if err := t.gatherSmallLeaves(0, minConfs, maxConfs, tpl, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Tree) gatherSmallLeaves(id, minConfs, maxConfs int, tpl *config.Config, res *[]*config.Config) error {
	n := &t.nodes[id]
	if n.IsLeaf() {
		if minConfs <= n.Total() && n.Total() <= maxConfs {
			*res = append(*res, tpl.Clone())
		}
		return nil
	}
	for val, cid := range n.Children {
		if tpl.Get(n.SplitVar) != config.Unset {
			return t.invariant(id, "variable %s split twice on a path", t.dom.Var(n.SplitVar).Name())
		}
		tpl.Set(n.SplitVar, val)
		err := t.gatherSmallLeaves(cid, minConfs, maxConfs, tpl, res)
		tpl.Unset(n.SplitVar)
		if err != nil {
			return err
		}
	}
	return nil
}
