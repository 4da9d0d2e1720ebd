package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParseOptions selects the goldmark extensions used to read documents and
// rule output. Unknown names are ignored.
type ParseOptions struct {
	Extensions []string
}

// Parser reads Markdown into a Document. It is stateless after construction
// and safe to share.
type Parser struct {
	engine goldmark.Markdown
}

// NewParser builds a goldmark backed parser. Without explicit extensions it
// enables GFM (tables, autolinks, strikethrough, task lists).
func NewParser(opts ParseOptions) *Parser {
	options := []goldmark.Option{}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		options = append(options, goldmark.WithExtensions(exts...))
	}
	return &Parser{engine: goldmark.New(options...)}
}

var defaultParser = NewParser(ParseOptions{})

// Default returns the shared parser with the default extension set.
func Default() *Parser {
	return defaultParser
}

// Parse reads source, splitting off front matter first.
func (p *Parser) Parse(source []byte) (*Document, error) {
	raw, body, meta, err := SplitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	root := &Node{Kind: KindDocument, raw: string(body)}
	root.Append(p.blocks(body, bytes.Count(raw, []byte("\n")))...)
	root.dirty = false

	return &Document{
		Root:        root,
		FrontMatter: string(raw),
		Meta:        meta,
		parser:      p,
	}, nil
}

// ParseString is Parse for string input.
func (p *Parser) ParseString(source string) (*Document, error) {
	return p.Parse([]byte(source))
}

// ParseFragment parses generated Markdown into detached block nodes. Front
// matter is not recognised and source lines are not recorded.
func (p *Parser) ParseFragment(fragment string) []*Node {
	nodes := p.blocks([]byte(fragment), 0)
	for _, node := range nodes {
		node.parent = nil
		node.Walk(func(n *Node) bool {
			n.Line = 0
			return true
		})
	}
	return nodes
}

func (p *Parser) parseAST(source []byte) ast.Node {
	return p.engine.Parser().Parse(text.NewReader(source))
}

// blocks converts the top level goldmark blocks of source into nodes.
// lineOffset is added to recorded line numbers.
func (p *Parser) blocks(source []byte, lineOffset int) []*Node {
	doc := p.parseAST(source)
	scan := newBlockScanner(source)

	var spans []blockSpan
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		spans = append(spans, scan.span(child, spans))
	}
	if len(spans) == 0 {
		if strings.TrimSpace(string(source)) == "" {
			return nil
		}
		first := scan.nextNonBlank(0)
		return []*Node{{
			Kind:    KindOther,
			Literal: scan.text(first, scan.lineCount()),
			Line:    lineOffset + first + 1,
		}}
	}

	nodes := make([]*Node, 0, len(spans))
	for i, span := range spans {
		end := scan.lineCount()
		if i+1 < len(spans) {
			end = spans[i+1].start
		}
		nodes = append(nodes, p.build(span.node, scan.text(span.start, end), lineOffset+span.start))
	}
	return nodes
}

func (p *Parser) build(node ast.Node, literal string, line int) *Node {
	out := &Node{Literal: literal, Line: line + 1}

	switch typed := node.(type) {
	case *ast.HTMLBlock:
		out.Kind = KindHTML
	case *ast.Paragraph, *ast.TextBlock:
		out.Kind = KindParagraph
	case *ast.Heading:
		out.Kind = KindHeading
		out.Level = typed.Level
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		out.Kind = KindCode
	case *ast.ThematicBreak:
		out.Kind = KindThematicBreak
	case *ast.Blockquote:
		out.Kind = KindBlockquote
		out.raw = literal
		out.Literal = ""
		out.Append(p.blocks([]byte(unquote(literal)), line)...)
		out.dirty = false
	case *ast.List:
		items, ok := splitListItems(literal, typed.ChildCount())
		if !ok {
			out.Kind = KindOther
			break
		}
		out.Kind = KindList
		out.raw = literal
		out.Literal = ""
		out.tight = typed.IsTight
		for _, item := range items {
			li := &Node{
				Kind:   KindListItem,
				Line:   line + item.line + 1,
				raw:    item.raw,
				marker: item.marker,
			}
			li.Append(p.blocks([]byte(item.content), line+item.line)...)
			li.dirty = false
			out.Append(li)
		}
		out.dirty = false
	case *extast.Table:
		out.Kind = KindTable
	default:
		out.Kind = KindOther
	}
	return out
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}

// KnownExtension reports whether name is a supported extension identifier.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
