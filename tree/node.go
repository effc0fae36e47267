package tree

/*
Node is a node of the tree. Nodes live in their tree's arena and refer to
each other by their index in it.
*/
type Node struct {
	// The index of the node in the tree
	ID int
	// The index of the parent of the node, -1 for the root
	Parent int
	// The distance to the root
	Depth int
	// The number of training configurations reaching the node that
	// missed and hit the target
	Misses int
	Hits   int
	// The id of the variable whose value selects the child to descend
	// to, -1 for leaves
	SplitVar int
	// The indices of the children of the node, one per value of the
	// split variable and indexed by it. Empty for leaves.
	Children []int
	// The smallest number of training configurations reaching a leaf of
	// the subtree rooted at this node
	MinCasesInOneLeaf int
}

// IsLeaf returns whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Total returns the number of training configurations reaching the node.
func (n *Node) Total() int {
	return n.Hits + n.Misses
}
