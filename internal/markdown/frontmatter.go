package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/goccy/go-yaml"
)

var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("---yaml", "---", yaml.Unmarshal),
}

// SplitFrontMatter separates a leading YAML block from the Markdown body.
// raw is the exact prefix of source that was consumed, so raw+body always
// equals source. meta is empty when no front matter is present.
func SplitFrontMatter(source []byte) (raw, body []byte, meta map[string]any, err error) {
	meta = map[string]any{}
	body, err = frontmatter.Parse(bytes.NewReader(source), &meta, frontMatterFormats...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse front matter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	raw = source[:len(source)-len(body)]
	return raw, body, meta, nil
}
