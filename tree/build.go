package tree

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/unsat/igen/config"
)

// Epsilon is the smallest gain considered informative.
const Epsilon = 1e-4

const (
	missIdx = 0
	hitIdx  = 1
)

/*
splitStats holds the statistics of a node computed to choose its split
variable. They only live while the node is being evaluated.
*/
type splitStats struct {
	// freq[hit][var][val] counts the configurations of each partition
	// taking each value
	freq     [2][][]int
	info     []float64
	gain     []float64
	avgain   float64
	mdl      float64
	mingain  float64
	possible int
	tested   []bool
}

func (t *Tree) newNode(parent int, configs [2][]*config.Config) int {
	id := len(t.nodes)
	depth := 0
	if parent >= 0 {
		depth = t.nodes[parent].Depth + 1
	}
	t.nodes = append(t.nodes, Node{
		ID:       id,
		Parent:   parent,
		Depth:    depth,
		Misses:   len(configs[missIdx]),
		Hits:     len(configs[hitIdx]),
		SplitVar: -1,
	})
	if t.metrics != nil {
		t.metrics.Nodes.Inc()
	}
	return id
}

/*
evaluate decides whether the node is a leaf or splits it, recursing on its
children. configs holds the miss and hit configurations reaching the node
and tested the variables already split on by its ancestors.
*/
func (t *Tree) evaluate(id int, configs [2][]*config.Config, tested []bool) error {
	n := &t.nodes[id]
	if n.Misses == 0 || n.Hits == 0 {
		n.MinCasesInOneLeaf = n.Total()
		if t.metrics != nil {
			t.metrics.Leaves.Inc()
		}
		t.logger.Debug("leaf", "node", id, "depth", n.Depth, "cases", n.Total(), "hit", t.LeafValue(n))
		return nil
	}
	untested := 0
	for _, done := range tested {
		if !done {
			untested++
		}
	}
	if untested == 0 {
		return t.invariant(id, "same configuration leads to both hit and miss")
	}

	splitVar := t.chooseSplit(id, configs, tested)
	if splitVar == -1 {
		return t.invariant(id, "no split variable found")
	}

	children := partition(configs, splitVar, t.dom.NValues(splitVar))
	childTested := append([]bool(nil), tested...)
	childTested[splitVar] = true

	ids := make([]int, len(children))
	for val, c := range children {
		ids[val] = t.newNode(id, c)
	}
	n = &t.nodes[id]
	n.SplitVar = splitVar
	n.Children = ids

	minCases := math.MaxInt
	for val, cid := range ids {
		if err := t.evaluate(cid, children[val], childTested); err != nil {
			return err
		}
		if m := t.nodes[cid].MinCasesInOneLeaf; m < minCases {
			minCases = m
		}
	}
	t.nodes[id].MinCasesInOneLeaf = minCases
	return nil
}

/*
chooseSplit computes the statistics of the node and returns the variable to
split it on, or -1. The statistics do not outlive the call.
*/
func (t *Tree) chooseSplit(id int, configs [2][]*config.Config, tested []bool) int {
	st := t.calcStats(configs, tested)
	splitVar, pass := st.selectBestVar(t, true), 1
	if splitVar == -1 {
		splitVar, pass = st.selectBestVar(t, false), 2
		if t.metrics != nil && splitVar != -1 {
			t.metrics.SecondPassSplits.Inc()
		}
	}
	if splitVar != -1 {
		t.logSplit(id, st, splitVar, pass)
	}
	return splitVar
}

/*
calcStats computes the value frequencies of every variable over both
partitions and the information and gain of the untested ones.
*/
func (t *Tree) calcStats(configs [2][]*config.Config, tested []bool) *splitStats {
	nvars := t.dom.NVars()
	st := &splitStats{
		info:   make([]float64, nvars),
		gain:   make([]float64, nvars),
		tested: tested,
	}
	for hit := missIdx; hit <= hitIdx; hit++ {
		st.freq[hit] = make([][]int, nvars)
		for v := 0; v < nvars; v++ {
			st.freq[hit][v] = make([]int, t.dom.NValues(v))
		}
		for _, c := range configs[hit] {
			for v, val := range c.Values() {
				st.freq[hit][v][val]++
			}
		}
	}

	nTotal := len(configs[missIdx]) + len(configs[hitIdx])
	total := float64(nTotal)
	log2ntotal := math.Log2(total)

	for v := 0; v < nvars; v++ {
		if tested[v] {
			continue
		}
		var sum float64
		for val := 0; val < t.dom.NValues(v); val++ {
			sum += nlog2n(st.freq[missIdx][v][val] + st.freq[hitIdx][v][val])
		}
		st.info[v] = log2ntotal - sum/total
	}

	baseInfo := log2ntotal - (nlog2n(len(configs[missIdx]))+nlog2n(len(configs[hitIdx])))/total

	for v := 0; v < nvars; v++ {
		if tested[v] {
			continue
		}
		var g float64
		for val := 0; val < t.dom.NValues(v); val++ {
			m, h := st.freq[missIdx][v][val], st.freq[hitIdx][v][val]
			g += nlog2n(m+h) - nlog2n(m) - nlog2n(h)
		}
		st.gain[v] = baseInfo - g/total
	}

	for v := 0; v < nvars; v++ {
		if tested[v] {
			continue
		}
		if st.gain[v] >= Epsilon &&
			(t.params.MultiValued || float64(t.dom.NValues(v)) < 0.3*float64(t.nCases+1)) {
			st.possible++
			st.avgain += st.gain[v]
		}
	}
	if st.possible > 0 {
		st.avgain /= float64(st.possible)
		st.mdl = math.Log2(float64(st.possible)) / total
		st.mingain = st.avgain*t.params.AvgainWeight + st.mdl*t.params.MDLWeight
	}
	return st
}

/*
selectBestVar returns the untested variable with the best gain ratio, or -1.
The first pass only considers variables reaching the minimum gain and with
positive information, and is skipped when no variable is eligible for the
average gain. The second pass considers every untested variable.
Among near ties the variable with fewer values wins.
*/
func (st *splitStats) selectBestVar(t *Tree, firstPass bool) int {
	if firstPass && st.possible == 0 {
		return -1
	}
	best := -1
	bestRatio := -1000.0
	bestNbr := t.dom.NAllValues()
	for v := range st.tested {
		if st.tested[v] {
			continue
		}
		inf := st.info[v]
		if firstPass {
			if st.gain[v] < 0.999*st.mingain || inf <= 0 {
				continue
			}
		} else if inf <= 0 {
			inf = Epsilon
		}
		ratio := st.gain[v] / inf
		nbr := t.dom.NValues(v)
		if ratio > bestRatio || (ratio > 0.999*bestRatio && nbr < bestNbr) {
			best = v
			bestRatio = ratio
			bestNbr = nbr
		}
	}
	return best
}

/*
partition reorders both partitions in place by the value of the split
variable and returns, for every value, the sub-slices of configurations
taking it.
*/
func partition(configs [2][]*config.Config, splitVar, nvalues int) [][2][]*config.Config {
	children := make([][2][]*config.Config, nvalues)
	for hit := missIdx; hit <= hitIdx; hit++ {
		cs := configs[hit]
		sort.SliceStable(cs, func(i, j int) bool {
			return cs[i].Get(splitVar) < cs[j].Get(splitVar)
		})
		end := 0
		for val := 0; val < nvalues; val++ {
			beg := end
			for end < len(cs) && cs[end].Get(splitVar) == val {
				end++
			}
			children[val][hit] = cs[beg:end:end]
		}
	}
	return children
}

// nlog2n returns n·log2(n), taking 0·log2(0) as 0.
func nlog2n(n int) float64 {
	if n <= 0 {
		return 0
	}
	x := float64(n)
	return x * math.Log2(x)
}

func (t *Tree) logSplit(id int, st *splitStats, splitVar, pass int) {
	ctx := context.Background()
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	n := &t.nodes[id]
	t.logger.LogAttrs(ctx, slog.LevelDebug, "split",
		slog.Int("node", id),
		slog.Int("depth", n.Depth),
		slog.Int("cases", n.Total()),
		slog.String("var", t.dom.Var(splitVar).Name()),
		slog.Float64("info", st.info[splitVar]),
		slog.Float64("gain", st.gain[splitVar]),
		slog.Float64("avgain", st.avgain),
		slog.Float64("mdl", st.mdl),
		slog.Int("possible", st.possible),
		slog.Float64("mingain", st.mingain),
		slog.Int("pass", pass),
		slog.String("table", st.table(t)),
	)
}

// table renders the per-value miss/hit counts of the untested variables.
func (st *splitStats) table(t *Tree) string {
	var b strings.Builder
	for v, done := range st.tested {
		if done {
			continue
		}
		fmt.Fprintf(&b, "%s:", t.dom.Var(v).Name())
		for val := range st.freq[missIdx][v] {
			fmt.Fprintf(&b, " %s=%d/%d", t.dom.Var(v).Label(val), st.freq[missIdx][v][val], st.freq[hitIdx][v][val])
		}
		fmt.Fprintf(&b, " info=%.3f gain=%.3f; ", st.info[v], st.gain[v])
	}
	return strings.TrimSuffix(b.String(), "; ")
}
