/*
Package json serializes built trees as JSON so that they can be classified
against and sampled from after the run that learned them.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/unsat/igen/domain"
	"github.com/unsat/igen/tree"
)

type jsonParams struct {
	MultiValued  bool    `json:"multiValued"`
	AvgainWeight float64 `json:"avgainWeight"`
	MDLWeight    float64 `json:"mdlWeight"`
	DefaultHit   bool    `json:"defaultHit"`
}

/*
WriteJSONTree takes a pointer to a tree.Tree and an io.Writer and serializes
the given tree as JSON onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
  - "variables": an array with the names of the domain variables, in order
  - "params": an object with the parameters the tree was grown with
  - "nodes": an array with the nodes of the tree in preorder, each serialized
    by encodeNode.

An error is returned if the tree is not built or cannot be written onto the
io.Writer.
*/
func WriteJSONTree(t *tree.Tree, w io.Writer) error {
	if t.Root() == nil {
		return tree.ErrNotBuilt
	}
	err := marshalJSONTreeHeader(t, w)
	if err != nil {
		return err
	}
	var i int
	err = t.Traverse(false, func(n *tree.Node) error {
		err := writeNode(i, t, n, w)
		i++
		return err
	})
	if err != nil {
		return err
	}
	return marshalJSONTreeFooter(w)
}

/*
ReadJSONTree takes an io.Reader, the domain the tree was grown on and tree
options, and returns the tree unmarshalled from the contents of the
io.Reader. The parameters stored with the tree override any given through
the options. An error is returned if the JSON cannot be read, its variables
do not match the domain or its nodes do not form a valid tree.
*/
func ReadJSONTree(r io.Reader, d *domain.Domain, opts ...tree.Option) (*tree.Tree, error) {
	dec := json.NewDecoder(r)
	jt := &struct {
		Variables []string           `json:"variables"`
		Params    *jsonParams        `json:"params"`
		Nodes     []*json.RawMessage `json:"nodes"`
	}{}
	err := dec.Decode(jt)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	if len(jt.Variables) != d.NVars() {
		return nil, fmt.Errorf("decoding tree: %d variables, domain has %d", len(jt.Variables), d.NVars())
	}
	for i, name := range jt.Variables {
		if d.Var(i).Name() != name {
			return nil, fmt.Errorf("decoding tree: variable %d is %s, domain has %s", i, name, d.Var(i).Name())
		}
	}
	if jt.Params != nil {
		opts = append(opts, tree.WithParams(tree.Params{
			MultiValued:  jt.Params.MultiValued,
			AvgainWeight: jt.Params.AvgainWeight,
			MDLWeight:    jt.Params.MDLWeight,
			DefaultHit:   jt.Params.DefaultHit,
		}))
	}
	nodes := make([]tree.Node, 0, len(jt.Nodes))
	for _, jn := range jt.Nodes {
		if jn == nil {
			return nil, fmt.Errorf("decoding tree: null node")
		}
		n, err := decodeNode(*jn, d)
		if err != nil {
			return nil, fmt.Errorf("decoding tree: %w", err)
		}
		nodes = append(nodes, *n)
	}
	nodes, err = reindex(nodes)
	if err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	return tree.Restore(d, nodes, opts...)
}

// reindex places every node at the position given by its ID.
func reindex(nodes []tree.Node) ([]tree.Node, error) {
	res := make([]tree.Node, len(nodes))
	seen := make([]bool, len(nodes))
	for _, n := range nodes {
		if n.ID < 0 || n.ID >= len(nodes) || seen[n.ID] {
			return nil, fmt.Errorf("invalid node id %d", n.ID)
		}
		seen[n.ID] = true
		res[n.ID] = n
	}
	return res, nil
}

func marshalJSONTreeHeader(t *tree.Tree, w io.Writer) error {
	names := make([]string, 0, t.Domain().NVars())
	for _, v := range t.Domain().Vars() {
		names = append(names, v.Name())
	}
	jnames, err := json.Marshal(names)
	if err != nil {
		return err
	}
	p := t.Params()
	jparams, err := json.Marshal(&jsonParams{p.MultiValued, p.AvgainWeight, p.MDLWeight, p.DefaultHit})
	if err != nil {
		return err
	}
	header := fmt.Sprintf(`{"variables":%s,"params":%s,"nodes":[`, jnames, jparams)
	_, err = w.Write([]byte(header))
	return err
}

func writeNode(i int, t *tree.Tree, n *tree.Node, w io.Writer) error {
	if i != 0 {
		_, err := w.Write([]byte(","))
		if err != nil {
			return err
		}
	}
	jn, err := encodeNode(n, t.Domain())
	if err != nil {
		return err
	}
	_, err = w.Write(jn)
	return err
}

func marshalJSONTreeFooter(w io.Writer) error {
	_, err := w.Write([]byte(`]}`))
	return err
}
