package markdown

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// blockScanner maps goldmark block nodes onto whole source lines. goldmark
// keeps byte segments for block content only (not for fences, list markers
// or setext underlines), so each top level block is assigned the run of
// lines from its first line up to the next block.
type blockScanner struct {
	source []byte
	starts []int
}

type blockSpan struct {
	node  ast.Node
	start int
	end   int
}

func newBlockScanner(source []byte) *blockScanner {
	return &blockScanner{source: source, starts: lineStarts(source)}
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			starts = append(starts, i+1)
		}
	}
	if len(source) == 0 {
		return nil
	}
	return starts
}

func (s *blockScanner) lineCount() int {
	return len(s.starts)
}

func (s *blockScanner) lineOf(offset int) int {
	return sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > offset }) - 1
}

func (s *blockScanner) line(n int) string {
	if n < 0 || n >= len(s.starts) {
		return ""
	}
	end := len(s.source)
	if n+1 < len(s.starts) {
		end = s.starts[n+1]
	}
	return strings.TrimRight(string(s.source[s.starts[n]:end]), "\r\n")
}

func (s *blockScanner) blank(n int) bool {
	return strings.TrimSpace(s.line(n)) == ""
}

func (s *blockScanner) nextNonBlank(from int) int {
	for n := from; n < len(s.starts); n++ {
		if !s.blank(n) {
			return n
		}
	}
	return len(s.starts)
}

// text returns lines [from, to) without trailing blank lines.
func (s *blockScanner) text(from, to int) string {
	if to > len(s.starts) {
		to = len(s.starts)
	}
	for to > from && s.blank(to-1) {
		to--
	}
	if from >= to {
		return ""
	}
	lines := make([]string, 0, to-from)
	for n := from; n < to; n++ {
		lines = append(lines, s.line(n))
	}
	return strings.Join(lines, "\n")
}

// span locates node given the spans already assigned to its preceding
// siblings.
func (s *blockScanner) span(node ast.Node, previous []blockSpan) blockSpan {
	prevEnd := -1
	if len(previous) > 0 {
		prevEnd = previous[len(previous)-1].end
	}

	start := -1
	if len(previous) > 0 && !isContainer(node) {
		if anchor, ok := s.anchorLine(node); ok && anchor > prevEnd {
			start = anchor
		}
	}
	if start < 0 {
		start = s.nextNonBlank(prevEnd + 1)
	}

	end := s.lastLine(node, start)
	if end < start {
		end = start
	}
	return blockSpan{node: node, start: start, end: end}
}

func isContainer(node ast.Node) bool {
	switch node.(type) {
	case *ast.Blockquote, *ast.List, *ast.ListItem:
		return true
	default:
		return false
	}
}

// anchorLine returns the first source line that belongs to a leaf block.
func (s *blockScanner) anchorLine(node ast.Node) (int, bool) {
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		switch {
		case fenced.Info != nil:
			return s.lineOf(fenced.Info.Segment.Start), true
		case fenced.Lines().Len() > 0:
			return s.lineOf(fenced.Lines().At(0).Start) - 1, true
		default:
			return 0, false
		}
	}

	first := -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		offset := -1
		if n.Type() == ast.TypeBlock {
			if lines := n.Lines(); lines != nil && lines.Len() > 0 {
				offset = lines.At(0).Start
			}
		} else if t, ok := n.(*ast.Text); ok {
			offset = t.Segment.Start
		}
		if offset >= 0 && (first < 0 || offset < first) {
			first = offset
		}
		return ast.WalkContinue, nil
	})
	if first < 0 {
		return 0, false
	}
	return s.lineOf(first), true
}

// lastLine returns the last source line covered by node, counting closing
// fences, html closures and setext underlines that carry no segment.
func (s *blockScanner) lastLine(node ast.Node, start int) int {
	last := start
	consider := func(line int) {
		if line > last {
			last = line
		}
	}

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock {
			if lines := n.Lines(); lines != nil && lines.Len() > 0 {
				seg := lines.At(lines.Len() - 1)
				consider(s.lineOf(max(seg.Start, seg.Stop-1)))
			}
		} else if t, ok := n.(*ast.Text); ok {
			consider(s.lineOf(max(t.Segment.Start, t.Segment.Stop-1)))
		}

		switch typed := n.(type) {
		case *ast.HTMLBlock:
			if typed.HasClosure() {
				consider(s.lineOf(typed.ClosureLine.Start))
			}
		case *ast.FencedCodeBlock:
			opening := start
			if line, ok := s.anchorLine(typed); ok {
				opening = line
			}
			closing := opening + 1
			if lines := typed.Lines(); lines.Len() > 0 {
				seg := lines.At(lines.Len() - 1)
				closing = s.lineOf(max(seg.Start, seg.Stop-1)) + 1
			}
			if isFenceLine(s.line(closing)) {
				consider(closing)
			}
		case *ast.Heading:
			if lines := typed.Lines(); lines.Len() > 0 {
				first := s.lineOf(lines.At(0).Start)
				if !isATXHeading(s.line(first)) {
					seg := lines.At(lines.Len() - 1)
					consider(s.lineOf(max(seg.Start, seg.Stop-1)) + 1)
				}
			}
		}
		return ast.WalkContinue, nil
	})

	if last >= len(s.starts) {
		last = len(s.starts) - 1
	}
	return last
}

var (
	fenceLinePattern  = regexp.MustCompile("^[ \t>]*(```|~~~)")
	atxHeadingPattern = regexp.MustCompile(`^[ \t>]*#{1,6}(\s|$)`)
	quotePrefix       = regexp.MustCompile(`^ {0,3}> ?`)
	listMarkerPattern = regexp.MustCompile(`^( {0,3})([-+*]|\d{1,9}[.)])( {1,4}|\t|$)`)
)

func isFenceLine(line string) bool {
	return fenceLinePattern.MatchString(line)
}

func isATXHeading(line string) bool {
	return atxHeadingPattern.MatchString(line)
}

// unquote strips one level of blockquote markers. Lazy continuation lines
// have no marker and are kept as they are.
func unquote(literal string) string {
	lines := strings.Split(literal, "\n")
	for i, line := range lines {
		lines[i] = quotePrefix.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

type listItemSource struct {
	line    int
	marker  string
	raw     string
	content string
}

// splitListItems cuts a list literal into items. A line starts a new item
// when it carries a list marker indented less than the content column of
// the current item. The split is rejected when the item count disagrees
// with goldmark.
func splitListItems(literal string, want int) ([]listItemSource, bool) {
	lines := strings.Split(literal, "\n")

	type pending struct {
		line   int
		marker string
		indent int
		lines  []string
	}
	var (
		items   []listItemSource
		current *pending
	)

	flush := func() {
		if current == nil {
			return
		}
		for len(current.lines) > 1 && strings.TrimSpace(current.lines[len(current.lines)-1]) == "" {
			current.lines = current.lines[:len(current.lines)-1]
		}
		raw := strings.Join(current.lines, "\n")
		content := make([]string, len(current.lines))
		for i, line := range current.lines {
			if i == 0 {
				if len(line) > current.indent {
					content[i] = line[current.indent:]
				}
				continue
			}
			content[i] = dedent(line, current.indent)
		}
		items = append(items, listItemSource{
			line:    current.line,
			marker:  current.marker,
			raw:     raw,
			content: strings.Join(content, "\n"),
		})
	}

	for n, line := range lines {
		if m := listMarkerPattern.FindStringSubmatch(line); m != nil && (current == nil || leadingSpaces(line) < current.indent) {
			flush()
			indent := len(m[0])
			if m[3] == "" {
				indent++
			}
			current = &pending{line: n, marker: m[2], indent: indent}
		}
		if current == nil {
			return nil, false
		}
		current.lines = append(current.lines, line)
	}
	flush()

	if len(items) != want {
		return nil, false
	}
	return items, true
}

func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func dedent(line string, width int) string {
	n := min(leadingSpaces(line), width)
	return line[n:]
}
