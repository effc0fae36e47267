package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unsat/igen/expr"
)

const sampleDomain = `
# variables of a sample program
A a1 a2
  B b1 b2 b3
# C c1
Empty
D d1   # trailing comment
A x1 x2
E e1 e2 e3 e4
`

func TestParse(t *testing.T) {
	ctx := expr.NewContext()
	d, err := Parse(ctx, strings.NewReader(sampleDomain))
	require.NoError(t, err)

	require.Equal(t, 4, d.NVars())
	names := []string{}
	for i, v := range d.Vars() {
		assert.Equal(t, i, v.ID())
		names = append(names, v.Name())
	}
	assert.Equal(t, []string{"A", "B", "D", "E"}, names)
	assert.Equal(t, []string{"a1", "a2"}, d.Lookup("A").Labels())
	assert.Equal(t, []string{"d1"}, d.Lookup("D").Labels())
	assert.Nil(t, d.Lookup("Empty"))
	assert.Nil(t, d.Lookup("C"))
	assert.Equal(t, 3, d.NValues(1))

	sum := 0
	for _, v := range d.Vars() {
		sum += v.NValues()
	}
	assert.Equal(t, sum, d.NAllValues())
	assert.Equal(t, 10, d.NAllValues())
	assert.Len(t, ctx.Vars(), 4)
	assert.Len(t, ctx.Constraints(), 4)
}

func TestEqPredicatesAreCached(t *testing.T) {
	d, err := Parse(expr.NewContext(), strings.NewReader("A a1 a2\nB b1 b2 b3\n"))
	require.NoError(t, err)
	b := d.Var(1)

	for val := 0; val < b.NValues(); val++ {
		assert.Equal(t, b.Eq(val), b.Eq(val))
		assert.Equal(t, expr.Eq{Var: b.Var(), Value: val}, b.Eq(val))
	}
	assert.True(t, b.Eq(2).Eval([]int{0, 2}))
	assert.False(t, b.Eq(2).Eval([]int{0, 1}))
	assert.Equal(t, "B == b3", b.Eq(2).String())

	idx, ok := b.ValueIndex("b2")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = b.ValueIndex("b9")
	assert.False(t, ok)
}

func TestParseCommentsAndBlanksAddNothing(t *testing.T) {
	d, err := Parse(expr.NewContext(), strings.NewReader("\n# A a1\n   \n\t# B b1 b2\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, d.NVars())
	assert.Equal(t, 0, d.NAllValues())
}

func TestParseMalformedInput(t *testing.T) {
	_, err := Parse(expr.NewContext(), nil)
	var mde *MalformedDomainError
	require.True(t, errors.As(err, &mde))

	broken := iotest.ErrReader(errors.New("disk on fire"))
	_, err = Parse(expr.NewContext(), broken)
	require.True(t, errors.As(err, &mde))
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = ParseFile(expr.NewContext(), "/nonexistent/domain.txt")
	require.True(t, errors.As(err, &mde))
}

func TestParseLongLine(t *testing.T) {
	labels := make([]string, 12000)
	for i := range labels {
		labels[i] = fmt.Sprintf("big%d", i)
	}
	in := "A a1 a2\nBIG " + strings.Join(labels, " ") + "\nC c1 c2"
	d, err := Parse(expr.NewContext(), strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, d.NVars())
	assert.Equal(t, 12000, d.Lookup("BIG").NValues())
	assert.Equal(t, []string{"c1", "c2"}, d.Lookup("C").Labels())
	assert.Equal(t, 12004, d.NAllValues())
}

func TestParseRequiresFreshContext(t *testing.T) {
	ctx := expr.NewContext()
	_, err := Parse(ctx, strings.NewReader("X x1 x2\n"))
	require.NoError(t, err)

	_, err = Parse(ctx, strings.NewReader("A a1 a2\nB b1 b2\n"))
	var mde *MalformedDomainError
	assert.True(t, errors.As(err, &mde), "%v", err)
	_, err = Parse(ctx, strings.NewReader("# nothing\n"))
	assert.True(t, errors.As(err, &mde), "%v", err)

	d := New(ctx)
	_, err = d.Add("A", []string{"a1", "a2"})
	assert.Error(t, err)
	assert.Equal(t, 0, d.NVars())
}

func TestVariableIDsMatchContext(t *testing.T) {
	ctx := expr.NewContext()
	d, err := Parse(ctx, strings.NewReader("A a1 a2\nB b1 b2\nA x1\n"))
	require.NoError(t, err)
	for _, v := range d.Vars() {
		assert.Equal(t, v.ID(), v.Var().ID)
		assert.Same(t, v.Var(), ctx.Vars()[v.ID()])
	}
	assert.True(t, d.Lookup("A").Eq(1).Eval([]int{1, 0}))
}

func TestAdd(t *testing.T) {
	d := New(expr.NewContext())
	_, err := d.Add("A", []string{"on", "off"})
	require.NoError(t, err)
	_, err = d.Add("A", []string{"x"})
	assert.Error(t, err)
	_, err = d.Add("B", nil)
	assert.Error(t, err)
	assert.Equal(t, "A on off\n", d.String())
}
