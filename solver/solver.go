/*
Package solver finds assignments satisfying formulas built on an
expr.Context, using the gini SAT solver.

Every integer variable of the context is encoded with one boolean input per
value, exactly one of which holds in any model. Formulas are compiled to an
and-inverter circuit over those inputs and handed to gini in CNF.
*/
package solver

import (
	"context"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/unsat/igen/expr"
)

/*
Solver compiles formulas over the variables of an expr.Context. It is not
safe for concurrent use.
*/
type Solver struct {
	ctx  *expr.Context
	c    *logic.C
	lits [][]z.Lit
}

// New returns a solver for formulas over the variables of ctx.
func New(ctx *expr.Context) *Solver {
	return &Solver{ctx: ctx, c: logic.NewC()}
}

// inputs returns the value literals of v, creating them on first use.
func (s *Solver) inputs(v *expr.Var) []z.Lit {
	for len(s.lits) <= v.ID {
		w := s.ctx.Vars()[len(s.lits)]
		ms := make([]z.Lit, w.Size)
		for i := range ms {
			ms[i] = s.c.Lit()
		}
		s.lits = append(s.lits, ms)
	}
	return s.lits[v.ID]
}

func (s *Solver) compile(e expr.Expr) (z.Lit, error) {
	switch e := e.(type) {
	case expr.Bool:
		if e {
			return s.c.T, nil
		}
		return s.c.F, nil
	case expr.Eq:
		ms := s.inputs(e.Var)
		if e.Value < 0 || e.Value >= len(ms) {
			return s.c.F, nil
		}
		return ms[e.Value], nil
	case expr.InRange:
		return s.c.Ors(s.inputs(e.Var)...), nil
	case expr.Not:
		m, err := s.compile(e.X)
		if err != nil {
			return z.LitNull, err
		}
		return m.Not(), nil
	case expr.And:
		ms, err := s.compileAll(e)
		if err != nil {
			return z.LitNull, err
		}
		return s.c.Ands(ms...), nil
	case expr.Or:
		ms, err := s.compileAll(e)
		if err != nil {
			return z.LitNull, err
		}
		return s.c.Ors(ms...), nil
	}
	return z.LitNull, fmt.Errorf("compiling %v: unsupported expression %T", e, e)
}

func (s *Solver) compileAll(es []expr.Expr) ([]z.Lit, error) {
	ms := make([]z.Lit, 0, len(es))
	for _, e := range es {
		m, err := s.compile(e)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

/*
load returns a fresh gini instance holding e, the constraints of the
context and the one-hot encoding of every variable.
*/
func (s *Solver) load(e expr.Expr) (*gini.Gini, error) {
	for _, v := range s.ctx.Vars() {
		s.inputs(v)
	}
	root, err := s.compile(e)
	if err != nil {
		return nil, err
	}
	constraints, err := s.compileAll(s.ctx.Constraints())
	if err != nil {
		return nil, err
	}
	root = s.c.Ands(append(constraints, root)...)

	g := gini.New()
	s.c.ToCnf(g)
	g.Add(s.c.T)
	g.Add(0)
	for _, ms := range s.lits {
		for _, m := range ms {
			g.Add(m)
		}
		g.Add(0)
		for i := range ms {
			for j := i + 1; j < len(ms); j++ {
				g.Add(ms[i].Not())
				g.Add(ms[j].Not())
				g.Add(0)
			}
		}
	}
	g.Add(root)
	g.Add(0)
	return g, nil
}

// Satisfiable returns whether some assignment satisfies e and the
// constraints of the context.
func (s *Solver) Satisfiable(e expr.Expr) (bool, error) {
	g, err := s.load(e)
	if err != nil {
		return false, err
	}
	return g.Solve() == 1, nil
}

/*
Models returns up to limit distinct complete assignments, indexed by
variable ID, satisfying e and the constraints of the context. A limit of
zero or less returns every model. It returns the models found so far and
the context error if ctx is done before the enumeration ends.
*/
func (s *Solver) Models(ctx context.Context, e expr.Expr, limit int) ([][]int, error) {
	g, err := s.load(e)
	if err != nil {
		return nil, err
	}
	var models [][]int
	for limit <= 0 || len(models) < limit {
		if err := ctx.Err(); err != nil {
			return models, err
		}
		if g.Solve() != 1 {
			break
		}
		model := make([]int, len(s.lits))
		for id, ms := range s.lits {
			for val, m := range ms {
				if g.Value(m) {
					model[id] = val
					g.Add(m.Not())
					break
				}
			}
		}
		g.Add(0)
		models = append(models, model)
	}
	return models, nil
}
