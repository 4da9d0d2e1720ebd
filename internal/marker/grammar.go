package marker

import (
	"regexp"
	"strings"
)

const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

var (
	noisePattern      = regexp.MustCompile(`^(?:/{2,}|#+)\s*`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*`)
)

// Parse classifies one HTML comment, delimiters included. It reports false
// when text is not a complete comment.
func Parse(text string, syntax Syntax) (Descriptor, bool) {
	syntax = syntax.WithDefaults()

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(commentOpen)+len(commentClose) ||
		!strings.HasPrefix(trimmed, commentOpen) ||
		!strings.HasSuffix(trimmed, commentClose) {
		return Descriptor{}, false
	}
	inner := strings.TrimSpace(trimmed[len(commentOpen) : len(trimmed)-len(commentClose)])

	if content, ok := metaContent(inner, syntax.MetaIdentifier); ok {
		return Descriptor{Type: TypeMeta, Content: content}, true
	}

	native := Descriptor{Type: TypeNative, Content: inner}
	rest := noisePattern.ReplaceAllString(inner, "")

	if strings.HasPrefix(rest, syntax.ClosingPrefix) {
		if d, ok := parseClose(rest[len(syntax.ClosingPrefix):], syntax); ok {
			return d, true
		}
		return native, true
	}

	if d, ok := parseOpen(rest, syntax); ok {
		return d, true
	}
	return native, true
}

func metaContent(inner, id string) (string, bool) {
	if len(inner) < 2*len(id) || !strings.HasPrefix(inner, id) || !strings.HasSuffix(inner, id) {
		return "", false
	}
	return strings.TrimSpace(inner[len(id) : len(inner)-len(id)]), true
}

func parseClose(rest string, syntax Syntax) (Descriptor, bool) {
	rest = strings.TrimLeft(rest, " \t")
	prefix := ""
	if syntax.KeywordPrefix != "" && strings.HasPrefix(rest, syntax.KeywordPrefix) {
		prefix = syntax.KeywordPrefix
		rest = rest[len(prefix):]
	}
	keyword := identifierPattern.FindString(rest)
	if keyword == "" || keyword != rest {
		return Descriptor{}, false
	}
	return Descriptor{
		Type:          TypeClose,
		Keyword:       keyword,
		Prefix:        prefix,
		ClosingPrefix: syntax.ClosingPrefix,
	}, true
}

func parseOpen(rest string, syntax Syntax) (Descriptor, bool) {
	if syntax.KeywordPrefix != "" {
		if !strings.HasPrefix(rest, syntax.KeywordPrefix) {
			return Descriptor{}, false
		}
		rest = rest[len(syntax.KeywordPrefix):]
	}
	keyword := identifierPattern.FindString(rest)
	if keyword == "" {
		return Descriptor{}, false
	}

	d := Descriptor{
		Type:          TypeOpen,
		Keyword:       keyword,
		Prefix:        syntax.KeywordPrefix,
		ClosingPrefix: syntax.ClosingPrefix,
	}
	args := strings.TrimSpace(rest[len(keyword):])
	if args == "" {
		return d, true
	}
	params, err := ParseArgs(args)
	if err != nil {
		return Descriptor{}, false
	}
	d.Params = params
	return d, true
}
