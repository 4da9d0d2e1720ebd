package markdown

import (
	"errors"
	"slices"
)

// ErrNodeNotFound is returned when a reference node is not a child of the
// container being mutated.
var ErrNodeNotFound = errors.New("markdown: node not found in container")

// Kind classifies block nodes.
type Kind uint8

const (
	KindDocument Kind = iota
	KindHTML
	KindParagraph
	KindHeading
	KindCode
	KindThematicBreak
	KindTable
	KindBlockquote
	KindList
	KindListItem
	KindOther
)

var kindNames = [...]string{
	KindDocument:      "document",
	KindHTML:          "html",
	KindParagraph:     "paragraph",
	KindHeading:       "heading",
	KindCode:          "code",
	KindThematicBreak: "thematic_break",
	KindTable:         "table",
	KindBlockquote:    "blockquote",
	KindList:          "list",
	KindListItem:      "list_item",
	KindOther:         "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsContainer reports whether nodes of this kind own child blocks.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDocument, KindBlockquote, KindList, KindListItem:
		return true
	default:
		return false
	}
}

// Node is a block in the document tree. Leaves carry their verbatim source
// in Literal; containers own an ordered Children sequence. Unmodified
// containers serialise back to their original text.
type Node struct {
	Kind    Kind
	Literal string
	// Level is the heading level for KindHeading nodes.
	Level int
	// Line is the 1-based source line, 0 for generated nodes.
	Line     int
	Children []*Node

	parent *Node
	raw    string
	marker string
	tight  bool
	dirty  bool
}

// NewHTML returns a detached raw HTML leaf.
func NewHTML(literal string) *Node {
	return &Node{Kind: KindHTML, Literal: literal}
}

// Parent returns the owning container, nil for the root or detached nodes.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// IndexOf returns the position of child in n.Children by identity, or -1.
func (n *Node) IndexOf(child *Node) int {
	if n == nil || child == nil {
		return -1
	}
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Contains reports whether child is currently attached to n.
func (n *Node) Contains(child *Node) bool {
	return n.IndexOf(child) >= 0
}

// InsertAfter splices nodes into n.Children right after ref.
func (n *Node) InsertAfter(ref *Node, nodes ...*Node) error {
	idx := n.IndexOf(ref)
	if idx < 0 {
		return ErrNodeNotFound
	}
	n.insertAt(idx+1, nodes)
	return nil
}

// Prepend inserts nodes at the start of n.Children.
func (n *Node) Prepend(nodes ...*Node) {
	n.insertAt(0, nodes)
}

// Append adds nodes at the end of n.Children.
func (n *Node) Append(nodes ...*Node) {
	n.insertAt(len(n.Children), nodes)
}

func (n *Node) insertAt(idx int, nodes []*Node) {
	if len(nodes) == 0 {
		return
	}
	for _, node := range nodes {
		node.parent = n
	}
	n.Children = slices.Insert(n.Children, idx, nodes...)
	n.markDirty()
}

// Remove detaches child from n. It reports false when child is not attached.
func (n *Node) Remove(child *Node) bool {
	idx := n.IndexOf(child)
	if idx < 0 {
		return false
	}
	n.Children = slices.Delete(n.Children, idx, idx+1)
	child.parent = nil
	n.markDirty()
	return true
}

// Replace swaps child for nodes, keeping position.
func (n *Node) Replace(child *Node, nodes ...*Node) error {
	idx := n.IndexOf(child)
	if idx < 0 {
		return ErrNodeNotFound
	}
	for _, node := range nodes {
		node.parent = n
	}
	n.Children = slices.Replace(n.Children, idx, idx+1, nodes...)
	child.parent = nil
	n.markDirty()
	return nil
}

func (n *Node) markDirty() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.dirty = true
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(node *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range slices.Clone(n.Children) {
		child.Walk(fn)
	}
}
