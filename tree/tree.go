/*
Package tree learns decision trees separating the configurations that hit a
coverage target from those that miss it, and translates them into boolean
formulas over the domain variables.

Trees are grown with a C5.0-style gain ratio criterion over discrete
variables: every split tests one variable and creates a child per value of
it. Nodes are kept in an arena owned by the Tree; parent and children are
indices into it.
*/
package tree

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/dataset"
	"github.com/unsat/igen/domain"
)

/*
Tree is a decision tree over the variables of a domain predicting whether a
configuration hits a coverage target.
*/
type Tree struct {
	dom     *domain.Domain
	params  Params
	logger  *slog.Logger
	metrics *Metrics
	nodes   []Node
	nCases  int
}

// New takes a domain and options and returns an empty tree over the domain.
func New(dom *domain.Domain, opts ...Option) *Tree {
	t := &Tree{
		dom:    dom,
		params: DefaultParams(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

/*
Build takes a domain, the configurations that hit and missed the target and
options, and returns the tree grown from them or an error. See Tree.Build.
*/
func Build(dom *domain.Domain, hits, misses []*config.Config, opts ...Option) (*Tree, error) {
	t := New(dom, opts...)
	if err := t.Build(hits, misses); err != nil {
		return nil, err
	}
	return t, nil
}

/*
Build grows the tree from the given hit and miss configurations, replacing
any previous content of the tree.

Every configuration must assign a value to every variable of the domain.
The given slices are reordered in place while splitting and must not be
used by anyone else until Build returns. An *InvariantError is returned if
the same assignment appears both as hit and miss.
*/
func (t *Tree) Build(hits, misses []*config.Config) error {
	start := time.Now()
	t.nodes = nil
	s := dataset.New(hits, misses)
	if err := s.Validate(t.dom); err != nil {
		return fmt.Errorf("building tree: %w", err)
	}
	t.nCases = s.Count()
	t.logger.Info("building tree", "hits", len(hits), "misses", len(misses), "vars", t.dom.NVars())

	root := t.newNode(-1, [2][]*config.Config{misses, hits})
	err := t.evaluate(root, [2][]*config.Config{misses, hits}, make([]bool, t.dom.NVars()))
	if err != nil {
		t.nodes = nil
		return fmt.Errorf("building tree: %w", err)
	}
	if t.metrics != nil {
		t.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	}
	t.logger.Info("tree built",
		"nodes", len(t.nodes),
		"leaves", t.Leaves(),
		"min_cases_in_one_leaf", t.nodes[root].MinCasesInOneLeaf,
		"duration", time.Since(start))
	return nil
}

/*
Restore takes a domain, the nodes of a previously built tree and options,
and returns a tree made of those nodes or an error if they do not form a
well-shaped tree over the domain. Node IDs must match their position and
the root must be the first node. Leaves must be reached only by hits or
only by misses, and the counts of every split node must add up those of
its children; an *InvariantError is returned otherwise.
*/
func Restore(dom *domain.Domain, nodes []Node, opts ...Option) (*Tree, error) {
	t := New(dom, opts...)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("restoring tree: no nodes")
	}
	referenced := make([]bool, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.ID != i {
			return nil, fmt.Errorf("restoring tree: node at %d has id %d", i, n.ID)
		}
		if (i == 0) != (n.Parent < 0) {
			return nil, fmt.Errorf("restoring tree: node %d has parent %d", i, n.Parent)
		}
		if n.Hits < 0 || n.Misses < 0 {
			return nil, fmt.Errorf("restoring tree: %w", nodeInvariant(n, "negative counts"))
		}
		if n.IsLeaf() {
			if n.SplitVar != -1 {
				return nil, fmt.Errorf("restoring tree: leaf %d splits on %d", i, n.SplitVar)
			}
			if n.Hits > 0 && n.Misses > 0 {
				return nil, fmt.Errorf("restoring tree: %w", nodeInvariant(n, "leaf reached by both hits and misses"))
			}
			continue
		}
		if n.SplitVar < 0 || n.SplitVar >= dom.NVars() || len(n.Children) != dom.NValues(n.SplitVar) {
			return nil, fmt.Errorf("restoring tree: node %d has %d children for variable %d", i, len(n.Children), n.SplitVar)
		}
		for _, c := range n.Children {
			if c <= 0 || c >= len(nodes) || referenced[c] || nodes[c].Parent != i || nodes[c].Depth != n.Depth+1 {
				return nil, fmt.Errorf("restoring tree: node %d has invalid child %d", i, c)
			}
			referenced[c] = true
		}
	}
	for i := 1; i < len(nodes); i++ {
		if !referenced[i] {
			return nil, fmt.Errorf("restoring tree: node %d is unreachable", i)
		}
	}
	for i := range nodes {
		n := &nodes[i]
		if n.IsLeaf() {
			continue
		}
		var hits, misses int
		for _, c := range n.Children {
			hits += nodes[c].Hits
			misses += nodes[c].Misses
		}
		if hits != n.Hits || misses != n.Misses {
			return nil, fmt.Errorf("restoring tree: %w", nodeInvariant(n, "children add up to %d hits and %d misses", hits, misses))
		}
	}
	t.nodes = append([]Node(nil), nodes...)
	t.nCases = t.nodes[0].Total()
	return t, nil
}

// Domain returns the domain the tree is built on.
func (t *Tree) Domain() *domain.Domain {
	return t.dom
}

// Params returns the parameters the tree is grown with.
func (t *Tree) Params() Params {
	return t.params
}

// Root returns the root node, or nil if the tree has not been built.
func (t *Tree) Root() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return &t.nodes[0]
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) *Node {
	return &t.nodes[id]
}

// Nodes returns the node arena. The returned slice must not be modified.
func (t *Tree) Nodes() []Node {
	return t.nodes
}

// Leaves returns the number of leaves of the tree.
func (t *Tree) Leaves() int {
	var leaves int
	for i := range t.nodes {
		if t.nodes[i].IsLeaf() {
			leaves++
		}
	}
	return leaves
}

/*
MinCasesInOneLeaf returns the smallest number of training configurations
reaching a leaf of the tree, a measure of how fragmented the data got.
*/
func (t *Tree) MinCasesInOneLeaf() (int, error) {
	if len(t.nodes) == 0 {
		return 0, ErrNotBuilt
	}
	return t.nodes[0].MinCasesInOneLeaf, nil
}

/*
LeafValue takes a leaf and returns its classification: whether it was
reached by hit configurations, or the default classification if no
training configuration reached it.
*/
func (t *Tree) LeafValue(n *Node) bool {
	if n.Hits == 0 && n.Misses == 0 {
		return t.params.DefaultHit
	}
	return n.Hits != 0
}

// Traverse takes a bottomup boolean and an error-returning function that
// takes a node, and goes through the tree running the function with every
// traversed node. Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and call it after its
// children if bottomup is true. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
func (t *Tree) Traverse(bottomup bool, f func(*Node) error) error {
	if len(t.nodes) == 0 {
		return ErrNotBuilt
	}
	return t.traverse(0, bottomup, f)
}

func (t *Tree) traverse(id int, bottomup bool, f func(*Node) error) error {
	n := &t.nodes[id]
	if !bottomup {
		if err := f(n); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := t.traverse(c, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		return f(n)
	}
	return nil
}

/*
String renders the tree one branch per line, in the C5.0 manner:

	A = a1:
	:...B = b1: HIT (1)
	:   B = b2: MISS (2)
	A = a2: MISS (3)
*/
func (t *Tree) String() string {
	if len(t.nodes) == 0 {
		return ""
	}
	var b strings.Builder
	prefix := []byte{}
	t.writeNode(&b, 0, &prefix)
	return b.String()
}

func (t *Tree) writeNode(b *strings.Builder, id int, prefix *[]byte) {
	n := &t.nodes[id]
	if n.IsLeaf() {
		label := "MISS"
		if t.LeafValue(n) {
			label = "HIT"
		}
		fmt.Fprintf(b, "%s (%d)\n", label, n.Total())
		return
	}
	v := t.dom.Var(n.SplitVar)
	*prefix = append(*prefix, ":   "...)
	for val, c := range n.Children {
		p := *prefix
		if val == len(n.Children)-1 {
			p[len(p)-4] = ' '
		}
		if val == 0 {
			if len(p) >= 8 {
				b.Write(p[:len(p)-8])
				b.WriteString(":...")
			}
		} else {
			b.Write(p[:len(p)-4])
		}
		sep := ":\n"
		if t.nodes[c].IsLeaf() {
			sep = ": "
		}
		fmt.Fprintf(b, "%s = %s%s", v.Name(), v.Label(val), sep)
		t.writeNode(b, c, prefix)
	}
	*prefix = (*prefix)[:len(*prefix)-4]
}
