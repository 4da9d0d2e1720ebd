package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

func jsonFieldDefinition(e *env) rules.Builtin {
	return rules.Builtin{
		Name:        NameJSONField,
		Description: "Value at a gjson path in a JSON file",
		Defaults:    rules.Params{"file": "package.json"},
		Content: func(_ context.Context, params rules.Params, _ *markdown.Document) (string, error) {
			path := params.String("path", "")
			if path == "" {
				return "", fmt.Errorf("%w: path", ErrMissingParam)
			}
			file := params.String("file", "package.json")
			if !filepath.IsAbs(file) && e.dir != "" {
				file = filepath.Join(e.dir, file)
			}
			data, err := afero.ReadFile(e.fs, file)
			if err != nil {
				return "", fmt.Errorf("builtin: read %s: %w", file, err)
			}
			if !gjson.ValidBytes(data) {
				return "", fmt.Errorf("builtin: %s is not valid JSON", file)
			}
			result := gjson.GetBytes(data, path)
			if !result.Exists() {
				return "", fmt.Errorf("builtin: %s has no field %q", file, path)
			}
			return params.String("prefix", "") + result.String() + params.String("suffix", ""), nil
		},
	}
}

func frontMatterDefinition() rules.Builtin {
	return rules.Builtin{
		Name:        NameFrontMatter,
		Description: "Field of the document front matter",
		Content: func(_ context.Context, params rules.Params, doc *markdown.Document) (string, error) {
			field := params.String("field", "")
			if field == "" {
				return "", fmt.Errorf("%w: field", ErrMissingParam)
			}
			value, ok := metaField(doc, field)
			if !ok {
				value = params.String("default", "")
			}
			if value == "" {
				return "", nil
			}
			if format := params.String("format", ""); strings.Contains(format, "%s") {
				return fmt.Sprintf(format, value), nil
			}
			return value, nil
		},
	}
}

// metaField looks up a dotted path in the front matter.
func metaField(doc *markdown.Document, path string) (string, bool) {
	if doc == nil || len(doc.Meta) == 0 {
		return "", false
	}
	data, err := json.Marshal(doc.Meta)
	if err != nil {
		return "", false
	}
	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

func dateDefinition(e *env) rules.Builtin {
	return rules.Builtin{
		Name:        NameDate,
		Description: "Current date",
		Defaults:    rules.Params{"layout": "2006-01-02"},
		Content: func(_ context.Context, params rules.Params, _ *markdown.Document) (string, error) {
			layout := params.String("layout", "2006-01-02")
			return params.String("prefix", "") + e.now().Format(layout) + params.String("suffix", ""), nil
		},
	}
}
