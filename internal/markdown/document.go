package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is a parsed Markdown file.
type Document struct {
	Root *Node
	// FrontMatter is the verbatim front matter block including delimiters.
	FrontMatter string
	Meta        map[string]any
	Path        string

	parser *Parser
}

// Changed reports whether the tree was edited since parsing.
func (d *Document) Changed() bool {
	return d != nil && d.Root != nil && d.Root.dirty
}

// Markdown serialises the document. Unchanged documents are returned exactly
// as read.
func (d *Document) Markdown() string {
	if d == nil || d.Root == nil {
		return ""
	}
	if !d.Root.dirty {
		return d.FrontMatter + d.Root.raw
	}
	return d.withFrontMatter(render(d.Root, false))
}

// Bytes is Markdown as a byte slice.
func (d *Document) Bytes() []byte {
	return []byte(d.Markdown())
}

// Canonical rebuilds every container from its children. Two documents with
// equal block structure produce equal canonical output regardless of which
// parts were edited.
func (d *Document) Canonical() string {
	if d == nil || d.Root == nil {
		return ""
	}
	return d.withFrontMatter(render(d.Root, true))
}

// withFrontMatter prefixes a rebuilt body with the front matter and the
// blank lines that originally followed it.
func (d *Document) withFrontMatter(body string) string {
	if body == "" {
		return d.FrontMatter
	}
	return d.FrontMatter + leadingBlankLines(d.Root.raw) + body + "\n"
}

func leadingBlankLines(s string) string {
	end := 0
	for end < len(s) {
		next := strings.IndexByte(s[end:], '\n')
		if next < 0 || strings.TrimSpace(s[end:end+next]) != "" {
			break
		}
		end += next + 1
	}
	return s[:end]
}

// ParseFragment parses generated Markdown with the same options the
// document was read with.
func (d *Document) ParseFragment(fragment string) []*Node {
	p := d.parser
	if p == nil {
		p = Default()
	}
	return p.ParseFragment(fragment)
}

// Heading is a section title found in the document body.
type Heading struct {
	Level int
	Text  string
}

// Headings lists the headings of the current tree in document order.
func (d *Document) Headings() []Heading {
	if d == nil || d.Root == nil {
		return nil
	}
	p := d.parser
	if p == nil {
		p = Default()
	}

	source := []byte(render(d.Root, false))
	var out []Heading
	_ = ast.Walk(p.engine.Parser().Parse(text.NewReader(source)), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			out = append(out, Heading{
				Level: h.Level,
				Text:  strings.TrimSpace(string(h.Text(source))),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}
