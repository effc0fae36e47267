package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/dataset"
	"github.com/unsat/igen/domain"
	"github.com/unsat/igen/expr"
)

func testDomain(t *testing.T, s string) *domain.Domain {
	t.Helper()
	d, err := domain.Parse(expr.NewContext(), strings.NewReader(s))
	require.NoError(t, err)
	return d
}

func configs(t *testing.T, d *domain.Domain, settings ...string) []*config.Config {
	t.Helper()
	var res []*config.Config
	for _, s := range settings {
		c, err := config.Parse(d, s)
		require.NoError(t, err)
		res = append(res, c)
	}
	return res
}

// allConfigs enumerates every complete config of the domain.
func allConfigs(d *domain.Domain) []*config.Config {
	res := []*config.Config{config.New(d.NVars())}
	for v := 0; v < d.NVars(); v++ {
		var next []*config.Config
		for _, c := range res {
			for val := 0; val < d.NValues(v); val++ {
				nc := c.Clone()
				nc.Set(v, val)
				next = append(next, nc)
			}
		}
		res = next
	}
	return res
}

func TestBuildSingleSplit(t *testing.T) {
	d := testDomain(t, "A a1 a2\nB b1 b2 b3\n")
	hits := configs(t, d, "A=a1 B=b1")
	misses := configs(t, d, "A=a2 B=b1", "A=a2 B=b2", "A=a2 B=b3")

	tr, err := Build(d, hits, misses)
	require.NoError(t, err)

	root := tr.Root()
	require.NotNil(t, root)
	assert.Equal(t, 0, root.SplitVar)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 2, tr.Leaves())

	left, right := tr.Node(root.Children[0]), tr.Node(root.Children[1])
	assert.Equal(t, 1, left.Hits)
	assert.Equal(t, 0, left.Misses)
	assert.True(t, tr.LeafValue(left))
	assert.Equal(t, 3, right.Misses)
	assert.False(t, tr.LeafValue(right))
	assert.Equal(t, 1, right.Depth)
	assert.Equal(t, 0, right.Parent)

	min, err := tr.MinCasesInOneLeaf()
	require.NoError(t, err)
	assert.Equal(t, 1, min)

	f, err := tr.MixedFormula()
	require.NoError(t, err)
	assert.Equal(t, "A == a1", f.String())

	ds, err := tr.Disjuncts()
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "A == a1", ds[0].String())

	assert.Equal(t, "A = a1: HIT (1)\nA = a2: MISS (3)\n", tr.String())
}

func TestBuildUniformPartition(t *testing.T) {
	d := testDomain(t, "A a1 a2\nB b1 b2\n")
	hits := configs(t, d, "A=a1 B=b1", "A=a2 B=b2")

	tr, err := Build(d, hits, nil)
	require.NoError(t, err)
	assert.True(t, tr.Root().IsLeaf())
	assert.Equal(t, -1, tr.Root().SplitVar)
	assert.Equal(t, 1, tr.Leaves())

	f, err := tr.MixedFormula()
	require.NoError(t, err)
	assert.Equal(t, expr.Bool(true), f)
	ds, err := tr.Disjuncts()
	require.NoError(t, err)
	assert.Equal(t, []expr.Expr{expr.Bool(true)}, ds)

	tr, err = Build(d, nil, hits)
	require.NoError(t, err)
	f, err = tr.MixedFormula()
	require.NoError(t, err)
	assert.Equal(t, expr.Bool(false), f)
	ds, err = tr.Disjuncts()
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestBuildContradiction(t *testing.T) {
	d := testDomain(t, "A a1 a2\nB b1 b2\n")
	hits := configs(t, d, "A=a1 B=b1")
	misses := configs(t, d, "A=a1 B=b1")
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_, err := Build(d, hits, misses, WithMetrics(m))
	var ie *InvariantError
	require.True(t, errors.As(err, &ie), "%v", err)
	assert.Equal(t, 2, ie.Depth)
	assert.Equal(t, 1, ie.Hits)
	assert.Equal(t, 1, ie.Misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvariantViolations))
}

func TestBuildRejectsIncompleteConfigs(t *testing.T) {
	d := testDomain(t, "A a1 a2\nB b1 b2\n")
	_, err := Build(d, configs(t, d, "A=a1"), configs(t, d, "A=a2 B=b1"))
	assert.Error(t, err)
}

func TestQueriesOnEmptyTree(t *testing.T) {
	tr := New(testDomain(t, "A a1 a2\n"))
	assert.Nil(t, tr.Root())
	_, err := tr.MixedFormula()
	assert.Equal(t, ErrNotBuilt, err)
	_, err = tr.Disjuncts()
	assert.Equal(t, ErrNotBuilt, err)
	_, err = tr.GatherSmallLeaves(0, 10)
	assert.Equal(t, ErrNotBuilt, err)
	_, err = tr.MinCasesInOneLeaf()
	assert.Equal(t, ErrNotBuilt, err)
	_, _, err = tr.Classify(config.New(1))
	assert.Equal(t, ErrNotBuilt, err)
	assert.Equal(t, "", tr.String())
}

// conjunctionTree learns hit iff A=a1 && B=b1 from every config of a
// three variable domain.
func conjunctionTree(t *testing.T, opts ...Option) (*Tree, *dataset.Set) {
	d := testDomain(t, "A a1 a2\nB b1 b2\nC c1 c2 c3\n")
	s := dataset.New(nil, nil)
	for _, c := range allConfigs(d) {
		s.Add(c, c.Get(0) == 0 && c.Get(1) == 0)
	}
	hits := append([]*config.Config(nil), s.Hits...)
	misses := append([]*config.Config(nil), s.Misses...)
	tr, err := Build(d, hits, misses, opts...)
	require.NoError(t, err)
	return tr, s
}

func TestBuildNested(t *testing.T) {
	tr, s := conjunctionTree(t)

	assert.Equal(t, -1, tr.Root().Parent)
	assert.NotEqual(t, 2, tr.Root().SplitVar)
	var leafTotal int
	err := tr.Traverse(false, func(n *Node) error {
		if n.IsLeaf() {
			leafTotal += n.Total()
			return nil
		}
		assert.Len(t, n.Children, tr.Domain().NValues(n.SplitVar))
		assert.Equal(t, n.Total(), func() int {
			sum := 0
			for _, c := range n.Children {
				sum += tr.Node(c).Total()
			}
			return sum
		}())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, s.Count(), leafTotal)

	acc, err := tr.Test(s)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	f, err := tr.MixedFormula()
	require.NoError(t, err)
	for _, c := range allConfigs(tr.Domain()) {
		assert.Equal(t, c.Get(0) == 0 && c.Get(1) == 0, f.Eval(c.Values()), c.Format(tr.Domain()))
	}
	assert.True(t, strings.Contains(tr.String(), ":..."))
}

func TestFormulaAgreesWithClassify(t *testing.T) {
	d := testDomain(t, "A a1 a2 a3\nB b1 b2\nC c1 c2\n")
	hits := configs(t, d, "A=a1 B=b1 C=c1", "A=a1 B=b2 C=c2", "A=a3 B=b2 C=c1")
	misses := configs(t, d, "A=a1 B=b1 C=c2", "A=a2 B=b1 C=c1", "A=a3 B=b1 C=c2", "A=a3 B=b2 C=c2")

	for _, defaultHit := range []bool{false, true} {
		p := DefaultParams()
		p.DefaultHit = defaultHit
		tr, err := Build(d, hits, misses, WithParams(p))
		require.NoError(t, err)

		f, err := tr.MixedFormula()
		require.NoError(t, err)
		ds, err := tr.Disjuncts()
		require.NoError(t, err)
		var union expr.Expr = expr.Bool(false)
		for _, e := range ds {
			union = expr.Disj(union, e)
		}
		for _, c := range allConfigs(d) {
			hit, _, err := tr.Classify(c)
			require.NoError(t, err)
			assert.Equal(t, hit, f.Eval(c.Values()), "formula on %s", c.Format(d))
			assert.Equal(t, hit, union.Eval(c.Values()), "disjuncts on %s", c.Format(d))
		}
		for _, c := range hits {
			hit, n, err := tr.Classify(c)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.True(t, n > 0)
		}
		for _, c := range misses {
			hit, _, err := tr.Classify(c)
			require.NoError(t, err)
			assert.False(t, hit)
		}
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	tr, _ := conjunctionTree(t)
	f1, err := tr.MixedFormula()
	require.NoError(t, err)
	f2, err := tr.MixedFormula()
	require.NoError(t, err)
	assert.Equal(t, f1.String(), f2.String())

	d1, err := tr.Disjuncts()
	require.NoError(t, err)
	d2, err := tr.Disjuncts()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	l1, err := tr.GatherSmallLeaves(0, 100)
	require.NoError(t, err)
	l2, err := tr.GatherSmallLeaves(0, 100)
	require.NoError(t, err)
	assert.Equal(t, l1, l2)
	assert.Len(t, l1, tr.Leaves())
}

func TestGatherSmallLeaves(t *testing.T) {
	d := testDomain(t, "A a1 a2\nB b1 b2 b3\n")
	hits := configs(t, d, "A=a1 B=b1")
	misses := configs(t, d, "A=a2 B=b1", "A=a2 B=b2", "A=a2 B=b3")
	tr, err := Build(d, hits, misses)
	require.NoError(t, err)

	cases := []struct {
		min, max int
		expected []string
	}{
		{1, 1, []string{"A=a1"}},
		{1, 3, []string{"A=a1", "A=a2"}},
		{3, 3, []string{"A=a2"}},
		{4, 10, nil},
		{2, 1, nil},
	}
	for _, c := range cases {
		leaves, err := tr.GatherSmallLeaves(c.min, c.max)
		require.NoError(t, err)
		var got []string
		for _, l := range leaves {
			got = append(got, l.Format(d))
		}
		assert.Equal(t, c.expected, got, "[%d, %d]", c.min, c.max)
	}
}

func TestGatherSmallLeavesSetsOnlyPathVariables(t *testing.T) {
	tr, _ := conjunctionTree(t)
	leaves, err := tr.GatherSmallLeaves(0, 100)
	require.NoError(t, err)
	for _, l := range leaves {
		assert.Equal(t, config.Unset, l.Get(2))
		hit, _, err := tr.Classify(l)
		require.NoError(t, err, l.Format(tr.Domain()))
		assert.Equal(t, l.Get(0) == 0 && l.Get(1) == 0, hit)
	}
}

func TestDefaultHitOnEmptyLeaves(t *testing.T) {
	d := testDomain(t, "A a1 a2 a3\n")
	for _, defaultHit := range []bool{false, true} {
		p := DefaultParams()
		p.DefaultHit = defaultHit
		tr, err := Build(d, configs(t, d, "A=a1"), configs(t, d, "A=a2"), WithParams(p))
		require.NoError(t, err)
		require.Len(t, tr.Root().Children, 3)

		hit, n, err := tr.Classify(configs(t, d, "A=a3")[0])
		require.NoError(t, err)
		assert.Equal(t, defaultHit, hit)
		assert.Equal(t, 0, n)

		min, err := tr.MinCasesInOneLeaf()
		require.NoError(t, err)
		assert.Equal(t, 0, min)
	}

	p := DefaultParams()
	p.DefaultHit = true
	tr, err := Build(d, configs(t, d, "A=a1"), configs(t, d, "A=a2"), WithParams(p))
	require.NoError(t, err)
	f, err := tr.MixedFormula()
	require.NoError(t, err)
	assert.Equal(t, "A == a1 || A == a3", f.String())
}

func TestClassifyErrors(t *testing.T) {
	tr, _ := conjunctionTree(t)
	_, _, err := tr.Classify(config.New(1))
	assert.Error(t, err)
	_, _, err = tr.Classify(config.New(3))
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	tr, _ := conjunctionTree(t)
	restored, err := Restore(tr.Domain(), tr.Nodes())
	require.NoError(t, err)
	assert.Equal(t, tr.String(), restored.String())
	f1, _ := tr.MixedFormula()
	f2, _ := restored.MixedFormula()
	assert.Equal(t, f1.String(), f2.String())

	_, err = Restore(tr.Domain(), nil)
	assert.Error(t, err)

	broken := append([]Node(nil), tr.Nodes()...)
	broken[0].Children = broken[0].Children[:1]
	_, err = Restore(tr.Domain(), broken)
	assert.Error(t, err)

	broken = append([]Node(nil), tr.Nodes()...)
	broken[1].Parent = 5
	_, err = Restore(tr.Domain(), broken)
	assert.Error(t, err)
}

func TestRestoreRejectsInconsistentCounts(t *testing.T) {
	d := testDomain(t, "A a1 a2\n")
	var ie *InvariantError
	_, err := Restore(d, []Node{{ID: 0, Parent: -1, SplitVar: -1, Hits: 2, Misses: 3}})
	require.True(t, errors.As(err, &ie), "%v", err)
	assert.Equal(t, 0, ie.NodeID)

	tr, _ := conjunctionTree(t)
	hitLeaf := -1
	for i, n := range tr.Nodes() {
		if n.IsLeaf() && n.Hits > 0 {
			hitLeaf = i
		}
	}
	require.NotEqual(t, -1, hitLeaf)
	impure := append([]Node(nil), tr.Nodes()...)
	impure[hitLeaf].Misses++
	_, err = Restore(tr.Domain(), impure)
	require.True(t, errors.As(err, &ie), "%v", err)

	unbalanced := append([]Node(nil), tr.Nodes()...)
	unbalanced[0].Hits++
	_, err = Restore(tr.Domain(), unbalanced)
	require.True(t, errors.As(err, &ie), "%v", err)
	assert.Equal(t, 0, ie.NodeID)

	negative := append([]Node(nil), tr.Nodes()...)
	negative[hitLeaf].Misses = -1
	_, err = Restore(tr.Domain(), negative)
	assert.True(t, errors.As(err, &ie), "%v", err)
}

func TestReadParams(t *testing.T) {
	p, err := ReadParams([]byte("mdl_weight: 0.5\ndefault_hit: true\n"))
	require.NoError(t, err)
	assert.Equal(t, Params{AvgainWeight: 1.0, MDLWeight: 0.5, DefaultHit: true}, p)

	_, err = ReadParams([]byte("mdl_wieght: 0.5\n"))
	assert.Error(t, err)

	_, err = ReadParamsFromFile("/nonexistent/params.yml")
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	d := testDomain(t, "A a1 a2\nB b1 b2 b3\n")
	_, err := Build(d, configs(t, d, "A=a1 B=b1"),
		configs(t, d, "A=a2 B=b1", "A=a2 B=b2", "A=a2 B=b3"), WithMetrics(m))
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Nodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Leaves))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecondPassSplits))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InvariantViolations))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BuildDuration))
}
