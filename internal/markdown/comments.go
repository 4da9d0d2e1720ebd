package markdown

import (
	"regexp"
	"strings"
)

var commentPattern = regexp.MustCompile(`(?s)<!--.*?-->`)

// Segment is one piece of an HTML block: either a complete comment or the
// text between comments.
type Segment struct {
	Text    string
	Comment bool
}

// CommentSegments splits an HTML literal around its comments. Text between
// comments is trimmed and dropped when blank.
func CommentSegments(literal string) []Segment {
	var segments []Segment
	appendText := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, Segment{Text: s})
		}
	}

	last := 0
	for _, loc := range commentPattern.FindAllStringIndex(literal, -1) {
		appendText(literal[last:loc[0]])
		segments = append(segments, Segment{Text: literal[loc[0]:loc[1]], Comment: true})
		last = loc[1]
	}
	appendText(literal[last:])
	return segments
}

// OnlyComments reports whether every segment is a comment, that is the
// literal held nothing but comments and whitespace.
func OnlyComments(segments []Segment) bool {
	for _, seg := range segments {
		if !seg.Comment {
			return false
		}
	}
	return len(segments) > 0
}

// SplitComments replaces every HTML node holding several comments and nothing
// else with one HTML node per comment, when shouldSplit accepts the segments.
// Nodes mixing HTML and comments are never touched. It returns the number of
// nodes replaced.
func SplitComments(root *Node, shouldSplit func([]Segment) bool) int {
	replaced := 0
	root.Walk(func(n *Node) bool {
		if n.Kind != KindHTML || n.parent == nil {
			return true
		}
		segments := CommentSegments(n.Literal)
		if len(segments) < 2 || !OnlyComments(segments) || (shouldSplit != nil && !shouldSplit(segments)) {
			return true
		}
		nodes := make([]*Node, len(segments))
		for i, seg := range segments {
			nodes[i] = &Node{Kind: KindHTML, Literal: seg.Text, Line: n.Line}
		}
		if err := n.parent.Replace(n, nodes...); err == nil {
			replaced++
		}
		return true
	})
	return replaced
}
