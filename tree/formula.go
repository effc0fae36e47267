package tree

import (
	"github.com/unsat/igen/expr"
)

/*
MixedFormula returns a formula over the domain variables that holds exactly
for the configurations the tree classifies as hits. A leaf contributes its
boolean constant; a split contributes the disjunction, over the values whose
child can reach a hit, of the value's equality conjoined with the child's
own formula. Branches ending in a miss leaf are left out.

It returns an *InvariantError if a split node has no branch reaching a hit.
*/
func (t *Tree) MixedFormula() (expr.Expr, error) {
	if len(t.nodes) == 0 {
		return nil, ErrNotBuilt
	}
	return t.mixed(0)
}

func (t *Tree) mixed(id int) (expr.Expr, error) {
	n := &t.nodes[id]
	if n.IsLeaf() {
		return t.dom.Context().Bool(t.LeafValue(n)), nil
	}
	if n.SplitVar < 0 || len(n.Children) != t.dom.NValues(n.SplitVar) {
		return nil, t.invariant(id, "split node without a child per value")
	}
	v := t.dom.Var(n.SplitVar)
	var res expr.Expr
	for val, cid := range n.Children {
		c := &t.nodes[cid]
		var e expr.Expr
		if c.IsLeaf() {
			if !t.LeafValue(c) {
				continue
			}
			e = v.Eq(val)
		} else {
			sub, err := t.mixed(cid)
			if err != nil {
				return nil, err
			}
			e = expr.Conj(v.Eq(val), sub)
		}
		if res == nil {
			res = e
		} else {
			res = expr.Disj(res, e)
		}
	}
	if res == nil {
		return nil, t.invariant(id, "no branch reaches a hit")
	}
	return res, nil
}

/*
Disjuncts returns, for every path from the root to a leaf classified as
hit, the conjunction of the variable equalities along the path. Their
disjunction is equivalent to the mixed formula. A tree made of a single
hit leaf yields the true constant, a single miss leaf no disjunct at all.
*/
func (t *Tree) Disjuncts() ([]expr.Expr, error) {
	if len(t.nodes) == 0 {
		return nil, ErrNotBuilt
	}
	res := []expr.Expr{}
	t.disjuncts(0, t.dom.Context().True(), &res)
	return res, nil
}

func (t *Tree) disjuncts(id int, cur expr.Expr, res *[]expr.Expr) {
	n := &t.nodes[id]
	if n.IsLeaf() {
		if t.LeafValue(n) {
			*res = append(*res, cur)
		}
		return
	}
	v := t.dom.Var(n.SplitVar)
	for val, cid := range n.Children {
		t.disjuncts(cid, expr.Conj(cur, v.Eq(val)), res)
	}
}
