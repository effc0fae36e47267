package json

import (
	"encoding/json"
	"fmt"

	"github.com/unsat/igen/domain"
	"github.com/unsat/igen/tree"
)

type node struct {
	ID         int    `json:"id"`
	ParentID   *int   `json:"pId,omitempty"`
	Depth      int    `json:"d"`
	SplitVar   string `json:"v,omitempty"`
	SubtreeIDs []int  `json:"stIds,omitempty"`
	Hits       int    `json:"h"`
	Misses     int    `json:"m"`
	MinCases   int    `json:"min"`
}

// encodeNode serializes a node naming its split variable rather than
// referring to it by position.
func encodeNode(n *tree.Node, d *domain.Domain) ([]byte, error) {
	jn := &node{
		ID:         n.ID,
		Depth:      n.Depth,
		SubtreeIDs: n.Children,
		Hits:       n.Hits,
		Misses:     n.Misses,
		MinCases:   n.MinCasesInOneLeaf,
	}
	if n.Parent >= 0 {
		p := n.Parent
		jn.ParentID = &p
	}
	if n.SplitVar >= 0 {
		jn.SplitVar = d.Var(n.SplitVar).Name()
	}
	return json.Marshal(jn)
}

func decodeNode(data []byte, d *domain.Domain) (*tree.Node, error) {
	jn := &node{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{
		ID:                jn.ID,
		Parent:            -1,
		Depth:             jn.Depth,
		Hits:              jn.Hits,
		Misses:            jn.Misses,
		SplitVar:          -1,
		Children:          jn.SubtreeIDs,
		MinCasesInOneLeaf: jn.MinCases,
	}
	if jn.ParentID != nil {
		n.Parent = *jn.ParentID
	}
	if jn.SplitVar != "" {
		v := d.Lookup(jn.SplitVar)
		if v == nil {
			return nil, fmt.Errorf("node %d splits on unknown variable %s", jn.ID, jn.SplitVar)
		}
		n.SplitVar = v.ID()
	}
	return n, nil
}
