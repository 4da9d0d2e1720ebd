// Package marker recognises placeholder comments in Markdown documents.
package marker

import "github.com/goliatone/go-mdexpand/internal/markdown"

const (
	DefaultClosingPrefix  = "/"
	DefaultMetaIdentifier = "+"
)

// Type classifies a comment.
type Type string

const (
	TypeOpen   Type = "open"
	TypeClose  Type = "close"
	TypeMeta   Type = "meta"
	TypeNative Type = "native"
)

// Syntax configures how comments are classified.
type Syntax struct {
	// KeywordPrefix, when set, must precede every managed keyword.
	KeywordPrefix string
	ClosingPrefix string
	// MetaIdentifier bounds the generated warning comment on both sides.
	MetaIdentifier string
}

// WithDefaults fills unset closing prefix and meta identifier.
func (s Syntax) WithDefaults() Syntax {
	if s.ClosingPrefix == "" {
		s.ClosingPrefix = DefaultClosingPrefix
	}
	if s.MetaIdentifier == "" {
		s.MetaIdentifier = DefaultMetaIdentifier
	}
	return s
}

// CloseComment renders the closing comment for keyword.
func (s Syntax) CloseComment(keyword string) string {
	s = s.WithDefaults()
	return "<!-- " + s.ClosingPrefix + s.KeywordPrefix + keyword + " -->"
}

// Descriptor is one classified comment bound to its place in the tree.
type Descriptor struct {
	Type          Type
	Keyword       string
	Prefix        string
	ClosingPrefix string
	// Params holds the parsed argument block of an open marker, nil when
	// absent. Objects decode to map[string]any, arrays to []any.
	Params any
	// Content is the inner text of native and meta comments.
	Content string

	Node   *markdown.Node
	Parent *markdown.Node
	Line   int
}

// Is reports whether d is of type t.
func (d Descriptor) Is(t Type) bool {
	return d.Type == t
}
