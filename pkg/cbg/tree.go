package cbg

import "github.com/herohde/cbh2pgn/pkg/cb"

// Node is a node in the decoded game tree. The root node carries no move; for
// every other node the first child is the mainline continuation and subsequent
// children are variations, in stream order.
type Node struct {
	Parent   *Node
	Children []*Node

	Move    cb.Move
	Comment string
	NAGs    []uint8
}

// IsRoot returns true iff the node is the tree root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Add appends a child node for the given move and returns it.
func (n *Node) Add(m cb.Move) *Node {
	child := &Node{Parent: n, Move: m}
	n.Children = append(n.Children, child)
	return child
}

// Mainline returns the mainline continuation, if any.
func (n *Node) Mainline() (*Node, bool) {
	if len(n.Children) == 0 {
		return nil, false
	}
	return n.Children[0], true
}

// Variations returns the non-mainline children.
func (n *Node) Variations() []*Node {
	if len(n.Children) < 2 {
		return nil
	}
	return n.Children[1:]
}
