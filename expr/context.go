package expr

import "fmt"

// Var is an integer variable declared on a Context.
type Var struct {
	// ID is the position of the variable in its Context.
	ID int
	// Name identifies the variable in rendered formulas.
	Name string
	// Size is the number of values the variable can take: [0, Size).
	Size int
	// Labels optionally names each value for rendering.
	Labels []string
}

/*
Context holds the variables formulas are built upon and the constraints
accumulated when declaring them.
*/
type Context struct {
	vars        []*Var
	byName      map[string]*Var
	constraints []Expr
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{byName: make(map[string]*Var)}
}

// True returns the true constant.
func (c *Context) True() Expr {
	return Bool(true)
}

// False returns the false constant.
func (c *Context) False() Expr {
	return Bool(false)
}

// Bool returns the constant for b.
func (c *Context) Bool(b bool) Expr {
	return Bool(b)
}

/*
IntVar takes a name, a number of values n and optional labels for those
values, declares an integer variable constrained to 0 <= v < n and returns
it. It returns an error if the name is already declared or n is not positive.
*/
func (c *Context) IntVar(name string, n int, labels ...string) (*Var, error) {
	if n <= 0 {
		return nil, fmt.Errorf("declaring variable %s: invalid number of values %d", name, n)
	}
	if _, ok := c.byName[name]; ok {
		return nil, fmt.Errorf("declaring variable %s: already declared", name)
	}
	if len(labels) != 0 && len(labels) != n {
		return nil, fmt.Errorf("declaring variable %s: %d labels for %d values", name, len(labels), n)
	}
	v := &Var{ID: len(c.vars), Name: name, Size: n, Labels: labels}
	c.vars = append(c.vars, v)
	c.byName[name] = v
	c.constraints = append(c.constraints, InRange{v})
	return v, nil
}

// Vars returns the declared variables in declaration order.
func (c *Context) Vars() []*Var {
	return c.vars
}

// Lookup returns the variable declared with the given name, or nil.
func (c *Context) Lookup(name string) *Var {
	return c.byName[name]
}

// Constraints returns the constraints accumulated on the context.
func (c *Context) Constraints() []Expr {
	return c.constraints
}

// Add appends a constraint to the context.
func (c *Context) Add(e Expr) {
	c.constraints = append(c.constraints, e)
}
