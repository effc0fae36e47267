package tree

import "fmt"

// TreeError represents an error on the use of a tree
type TreeError string

/*
ErrNotBuilt is returned by queries on a tree that has not been built or
restored.
*/
const ErrNotBuilt = TreeError("tree has not been built")

func (te TreeError) Error() string {
	return string(te)
}

/*
InvariantError reports a structural inconsistency found while building or
querying a tree: the same configuration observed both as hit and miss, a
node that cannot be split, or a node with no branch reaching a hit. It
carries the context of the offending node. Builds and queries returning it
are aborted; their results are unusable.
*/
type InvariantError struct {
	NodeID int
	Depth  int
	Hits   int
	Misses int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tree invariant violated at node %d (depth %d, %d hits, %d misses): %s",
		e.NodeID, e.Depth, e.Hits, e.Misses, e.Reason)
}

func (t *Tree) invariant(id int, format string, a ...interface{}) error {
	if t.metrics != nil {
		t.metrics.InvariantViolations.Inc()
	}
	return nodeInvariant(&t.nodes[id], format, a...)
}

func nodeInvariant(n *Node, format string, a ...interface{}) *InvariantError {
	return &InvariantError{
		NodeID: n.ID,
		Depth:  n.Depth,
		Hits:   n.Hits,
		Misses: n.Misses,
		Reason: fmt.Sprintf(format, a...),
	}
}
