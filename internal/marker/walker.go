package marker

import "github.com/goliatone/go-mdexpand/internal/markdown"

// Walk classifies every comment in the tree in document order. It does not
// mutate the tree: when an HTML block holds several comments the returned
// descriptors point at detached nodes carrying each comment. Blocks mixing
// HTML with comments are not markers.
func Walk(root *markdown.Node, syntax Syntax) []Descriptor {
	var out []Descriptor
	root.Walk(func(n *markdown.Node) bool {
		if n.Kind != markdown.KindHTML || n.Parent() == nil {
			return true
		}
		segments := markdown.CommentSegments(n.Literal)
		if len(segments) < 2 {
			if d, ok := Parse(n.Literal, syntax); ok {
				out = append(out, bind(d, n, n.Parent()))
			}
			return true
		}
		if !markdown.OnlyComments(segments) {
			return true
		}
		for _, seg := range segments {
			if d, ok := Parse(seg.Text, syntax); ok {
				node := markdown.NewHTML(seg.Text)
				node.Line = n.Line
				out = append(out, bind(d, node, n.Parent()))
			}
		}
		return true
	})
	return out
}

// Split breaks HTML blocks made only of comments into one node per comment
// when at least one of them is a managed marker, so that later edits can
// address each marker. Blocks whose comments are all native, and blocks that
// mix HTML with comments, are left alone.
func Split(root *markdown.Node, syntax Syntax) int {
	return markdown.SplitComments(root, func(segments []markdown.Segment) bool {
		for _, seg := range segments {
			if d, ok := Parse(seg.Text, syntax); ok && d.Type != TypeNative {
				return true
			}
		}
		return false
	})
}

func bind(d Descriptor, node, parent *markdown.Node) Descriptor {
	d.Node = node
	d.Parent = parent
	d.Line = node.Line
	return d
}
