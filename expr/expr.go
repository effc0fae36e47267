/*
Package expr provides the symbolic boolean expressions learned trees are
translated into, together with the Context that owns the integer variables
they range over.

A Context is append-only: variables and their range constraints are added
while a domain is being parsed and are only read afterwards. Registration
must be complete before any formula is built; the Context does no locking.
*/
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

/*
Expr is a boolean formula over the integer variables of a Context.

Its Eval method takes an assignment indexed by variable ID, where a negative
value stands for an unset variable, and returns whether the formula holds.
*/
type Expr interface {
	Eval(assignment []int) bool
	String() string
}

// Bool is a boolean constant.
type Bool bool

// Eq holds when Var takes the value index Value.
type Eq struct {
	Var   *Var
	Value int
}

// InRange holds when Var takes a value in [0, Var.Size).
type InRange struct {
	Var *Var
}

// And is the conjunction of its operands. An empty And is true.
type And []Expr

// Or is the disjunction of its operands. An empty Or is false.
type Or []Expr

// Not negates X.
type Not struct {
	X Expr
}

// Eval returns the constant.
func (b Bool) Eval([]int) bool {
	return bool(b)
}

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

/*
Eval returns whether the assignment sets the variable to the expected value.
Unset variables and variables out of the assignment range never satisfy it.
*/
func (e Eq) Eval(assignment []int) bool {
	if e.Var.ID >= len(assignment) {
		return false
	}
	return assignment[e.Var.ID] == e.Value
}

func (e Eq) String() string {
	return fmt.Sprintf("%s == %s", e.Var.Name, e.Var.label(e.Value))
}

// Eval returns whether the variable has a value inside its range.
func (r InRange) Eval(assignment []int) bool {
	if r.Var.ID >= len(assignment) {
		return false
	}
	v := assignment[r.Var.ID]
	return 0 <= v && v < r.Var.Size
}

func (r InRange) String() string {
	return fmt.Sprintf("0 <= %s < %d", r.Var.Name, r.Var.Size)
}

// Eval returns true when every operand holds.
func (a And) Eval(assignment []int) bool {
	for _, e := range a {
		if !e.Eval(assignment) {
			return false
		}
	}
	return true
}

func (a And) String() string {
	return join([]Expr(a), " && ", "true")
}

// Eval returns true when at least one operand holds.
func (o Or) Eval(assignment []int) bool {
	for _, e := range o {
		if e.Eval(assignment) {
			return true
		}
	}
	return false
}

func (o Or) String() string {
	return join([]Expr(o), " || ", "false")
}

// Eval negates the operand.
func (n Not) Eval(assignment []int) bool {
	return !n.X.Eval(assignment)
}

func (n Not) String() string {
	return fmt.Sprintf("!(%s)", n.X)
}

/*
Conj takes two expressions and returns their conjunction. Nested
conjunctions are flattened and true constants dropped; a false operand
makes the whole conjunction false.
*/
func Conj(a, b Expr) Expr {
	var result And
	for _, e := range []Expr{a, b} {
		switch e := e.(type) {
		case Bool:
			if !e {
				return Bool(false)
			}
		case And:
			result = append(result, e...)
		default:
			result = append(result, e)
		}
	}
	switch len(result) {
	case 0:
		return Bool(true)
	case 1:
		return result[0]
	}
	return result
}

/*
Disj takes two expressions and returns their disjunction. Nested
disjunctions are flattened and false constants dropped; a true operand
makes the whole disjunction true.
*/
func Disj(a, b Expr) Expr {
	var result Or
	for _, e := range []Expr{a, b} {
		switch e := e.(type) {
		case Bool:
			if e {
				return Bool(true)
			}
		case Or:
			result = append(result, e...)
		default:
			result = append(result, e)
		}
	}
	switch len(result) {
	case 0:
		return Bool(false)
	case 1:
		return result[0]
	}
	return result
}

// Neg returns the negation of e, folding constants and double negations.
func Neg(e Expr) Expr {
	switch e := e.(type) {
	case Bool:
		return !e
	case Not:
		return e.X
	}
	return Not{e}
}

func join(es []Expr, sep, empty string) string {
	if len(es) == 0 {
		return empty
	}
	parts := make([]string, len(es))
	for i, e := range es {
		switch e.(type) {
		case And, Or:
			parts[i] = "(" + e.String() + ")"
		default:
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, sep)
}

func (v *Var) label(value int) string {
	if 0 <= value && value < len(v.Labels) {
		return v.Labels[value]
	}
	return strconv.Itoa(value)
}
