package json

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/domain"
	"github.com/unsat/igen/expr"
	"github.com/unsat/igen/tree"
)

func parseConfigs(t *testing.T, d *domain.Domain, settings ...string) []*config.Config {
	var res []*config.Config
	for _, s := range settings {
		c, err := config.Parse(d, s)
		require.NoError(t, err)
		res = append(res, c)
	}
	return res
}

func TestWriteReadJSONTree(t *testing.T) {
	d, err := domain.Parse(expr.NewContext(), strings.NewReader("A a1 a2\nB b1 b2\nC c1 c2\n"))
	require.NoError(t, err)
	hits := parseConfigs(t, d, "A=a1 B=b1 C=c1", "A=a1 B=b1 C=c2")
	misses := parseConfigs(t, d, "A=a1 B=b2 C=c1", "A=a2 B=b1 C=c1", "A=a2 B=b2 C=c2")
	p := tree.DefaultParams()
	p.DefaultHit = true
	tr, err := tree.Build(d, hits, misses, tree.WithParams(p))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteJSONTree(tr, buf))
	assert.True(t, strings.HasPrefix(buf.String(), `{"variables":["A","B","C"],"params":{`))

	restored, err := ReadJSONTree(bytes.NewReader(buf.Bytes()), d)
	require.NoError(t, err)
	assert.Equal(t, tr.Nodes(), restored.Nodes())
	assert.Equal(t, p, restored.Params())
	assert.Equal(t, tr.String(), restored.String())
}

func TestReadJSONTreeErrors(t *testing.T) {
	d, err := domain.Parse(expr.NewContext(), strings.NewReader("A a1 a2\n"))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":          `{"variables":`,
		"other variables":  `{"variables":["B"],"nodes":[{"id":0,"d":0,"h":1,"m":0,"min":1}]}`,
		"unknown variable": `{"variables":["A"],"nodes":[{"id":0,"d":0,"v":"Z","stIds":[1,2],"h":1,"m":1,"min":0}]}`,
		"repeated id":      `{"variables":["A"],"nodes":[{"id":0,"d":0,"h":1,"m":0,"min":1},{"id":0,"d":0,"h":1,"m":0,"min":1}]}`,
		"no nodes":         `{"variables":["A"],"nodes":[]}`,
		"impure leaf":      `{"variables":["A"],"nodes":[{"id":0,"d":0,"h":2,"m":3,"min":5}]}`,
		"unbalanced split": `{"variables":["A"],"nodes":[{"id":0,"d":0,"v":"A","stIds":[1,2],"h":2,"m":1,"min":1},{"id":1,"pId":0,"d":1,"h":1,"m":0,"min":1},{"id":2,"pId":0,"d":1,"h":0,"m":1,"min":1}]}`,
	}
	for name, in := range cases {
		_, err := ReadJSONTree(strings.NewReader(in), d)
		assert.Error(t, err, name)
	}

	var ie *tree.InvariantError
	_, err = ReadJSONTree(strings.NewReader(cases["impure leaf"]), d)
	assert.True(t, errors.As(err, &ie), "%v", err)

	tr, err := ReadJSONTree(strings.NewReader(`{"variables":["A"],"nodes":[{"id":0,"d":0,"h":2,"m":0,"min":2}]}`), d)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Leaves())
	assert.Equal(t, tree.DefaultParams(), tr.Params())
}

func TestWriteJSONTreeNotBuilt(t *testing.T) {
	d, err := domain.Parse(expr.NewContext(), strings.NewReader("A a1 a2\n"))
	require.NoError(t, err)
	assert.Equal(t, tree.ErrNotBuilt, WriteJSONTree(tree.New(d), &bytes.Buffer{}))
}
