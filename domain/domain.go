/*
Package domain models the configuration space of a program under test: an
ordered list of variables, each taking one of a finite list of labeled values.

Variables are registered on an expr.Context as integer variables when the
domain is built, and the equality predicates for each of their values are
created once and cached so that formula synthesis never rebuilds them.
*/
package domain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unsat/igen/expr"
)

/*
VariableDomain represents a configuration variable: its name and the ordered
labels of the values it can take. A value is referred to by its index in the
label list.
*/
type VariableDomain struct {
	id     int
	name   string
	labels []string
	zvar   *expr.Var
	eqs    []expr.Expr
}

/*
Domain is the ordered collection of the variables of a program. Variable
order is the canonical indexing of every configuration and tree built on it.
*/
type Domain struct {
	ctx        *expr.Context
	vars       []*VariableDomain
	byName     map[string]*VariableDomain
	nAllValues int
}

/*
MalformedDomainError is returned when a domain cannot be read from its
input at all. No partial domain is usable when it is returned.
*/
type MalformedDomainError struct {
	Err error
}

func (e *MalformedDomainError) Error() string {
	return fmt.Sprintf("malformed domain: %v", e.Err)
}

func (e *MalformedDomainError) Unwrap() error {
	return e.Err
}

// ID returns the position of the variable in its domain.
func (v *VariableDomain) ID() int {
	return v.id
}

// Name returns the name of the variable.
func (v *VariableDomain) Name() string {
	return v.name
}

// Labels returns the value labels of the variable, indexed by value.
func (v *VariableDomain) Labels() []string {
	return v.labels
}

// NValues returns the number of values the variable can take.
func (v *VariableDomain) NValues() int {
	return len(v.labels)
}

// Label returns the label for the given value index.
func (v *VariableDomain) Label(val int) string {
	return v.labels[val]
}

/*
ValueIndex takes a label and returns the index of the value it names and
true, or -1 and false if the variable has no such value.
*/
func (v *VariableDomain) ValueIndex(label string) (int, bool) {
	for i, l := range v.labels {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

// Var returns the solver variable backing this variable.
func (v *VariableDomain) Var() *expr.Var {
	return v.zvar
}

// Eq returns the cached predicate stating the variable takes value val.
func (v *VariableDomain) Eq(val int) expr.Expr {
	return v.eqs[val]
}

func (v *VariableDomain) String() string {
	return v.name
}

// New returns an empty domain whose variables are declared on ctx.
func New(ctx *expr.Context) *Domain {
	return &Domain{ctx: ctx, byName: make(map[string]*VariableDomain)}
}

/*
Add takes a variable name and its value labels, declares it on the domain's
context and appends it to the domain. It returns an error if the variable
has no labels or its name is already taken, or if the context holds
variables declared outside the domain, as variable IDs would then disagree
with their position in the domain.
*/
func (d *Domain) Add(name string, labels []string) (*VariableDomain, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("adding variable %s: no values", name)
	}
	if _, ok := d.byName[name]; ok {
		return nil, fmt.Errorf("adding variable %s: duplicated variable", name)
	}
	if n := len(d.ctx.Vars()); n != len(d.vars) {
		return nil, fmt.Errorf("adding variable %s: context declares %d variables, domain has %d", name, n, len(d.vars))
	}
	zvar, err := d.ctx.IntVar(name, len(labels), labels...)
	if err != nil {
		return nil, fmt.Errorf("adding variable %s: %w", name, err)
	}
	v := &VariableDomain{
		id:     len(d.vars),
		name:   name,
		labels: labels,
		zvar:   zvar,
		eqs:    make([]expr.Expr, len(labels)),
	}
	for i := range labels {
		v.eqs[i] = expr.Eq{Var: zvar, Value: i}
	}
	d.vars = append(d.vars, v)
	d.byName[name] = v
	d.nAllValues += len(labels)
	return v, nil
}

/*
Parse takes an expr.Context and an io.Reader and returns the domain described
by the reader's content or an error.

The content is line oriented: each line holds a variable name followed by
the labels of its values, separated by whitespace. Blank lines and lines
starting with # are ignored, and a token starting with # ends the line. A
line with a name but no labels, or one repeating a declared name, is
skipped. Lines may be of any length.

A nil reader, a failure to read from it, or a context already holding
variables not declared through this domain yields a *MalformedDomainError.
*/
func Parse(ctx *expr.Context, r io.Reader) (*Domain, error) {
	if r == nil {
		return nil, &MalformedDomainError{fmt.Errorf("no input to read")}
	}
	if n := len(ctx.Vars()); n != 0 {
		return nil, &MalformedDomainError{fmt.Errorf("context already declares %d variables", n)}
	}
	d := New(ctx)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &MalformedDomainError{err}
		}
		if perr := d.parseLine(line); perr != nil {
			return nil, &MalformedDomainError{perr}
		}
		if err == io.EOF {
			break
		}
	}
	return d, nil
}

func (d *Domain) parseLine(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || strings.HasPrefix(tokens[0], "#") {
		return nil
	}
	name := tokens[0]
	var labels []string
	for _, t := range tokens[1:] {
		if strings.HasPrefix(t, "#") {
			break
		}
		labels = append(labels, t)
	}
	// lines without labels or repeating a name are skipped
	if len(labels) == 0 || d.byName[name] != nil {
		return nil
	}
	_, err := d.Add(name, labels)
	return err
}

/*
ParseFile takes an expr.Context and a filepath and returns the domain parsed
from the file contents with Parse, or an error if the file cannot be opened
or read.
*/
func ParseFile(ctx *expr.Context, filepath string) (*Domain, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, &MalformedDomainError{fmt.Errorf("opening domain file %s: %w", filepath, err)}
	}
	defer f.Close()
	d, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parsing domain file %s: %w", filepath, err)
	}
	return d, nil
}

// Context returns the expr.Context the domain variables are declared on.
func (d *Domain) Context() *expr.Context {
	return d.ctx
}

// NVars returns the number of variables in the domain.
func (d *Domain) NVars() int {
	return len(d.vars)
}

// NValues returns the number of values of the variable with the given id.
func (d *Domain) NValues(id int) int {
	return len(d.vars[id].labels)
}

// NAllValues returns the sum of the number of values over all variables.
func (d *Domain) NAllValues() int {
	return d.nAllValues
}

// Var returns the variable with the given id.
func (d *Domain) Var(id int) *VariableDomain {
	return d.vars[id]
}

// Vars returns the variables of the domain in order.
func (d *Domain) Vars() []*VariableDomain {
	return d.vars
}

// Lookup returns the variable with the given name, or nil if there is none.
func (d *Domain) Lookup(name string) *VariableDomain {
	return d.byName[name]
}

func (d *Domain) String() string {
	var b strings.Builder
	for _, v := range d.vars {
		fmt.Fprintf(&b, "%s %s\n", v.name, strings.Join(v.labels, " "))
	}
	return b.String()
}
