package documents

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

// Source is a loaded and parsed Markdown file.
type Source struct {
	Path     string
	Data     []byte
	Checksum []byte
	ModTime  time.Time
	Document *markdown.Document
}

// Loader discovers and parses Markdown files on an afero filesystem.
// Relative paths and patterns resolve against BaseDir when it is set.
type Loader struct {
	fs      afero.Fs
	baseDir string
	parser  *markdown.Parser
}

// NewLoader constructs a Loader. A nil parser selects the default dialect.
func NewLoader(fs afero.Fs, baseDir string, parser *markdown.Parser) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if parser == nil {
		parser = markdown.Default()
	}
	return &Loader{fs: fs, baseDir: filepath.Clean(baseDir), parser: parser}
}

// Match expands patterns into file paths, keeping pattern order and
// dropping duplicates. Matches of a single pattern are sorted.
func (l *Loader) Match(ctx context.Context, patterns []string) ([]string, error) {
	var (
		files []string
		seen  = map[string]struct{}{}
	)
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		matches, err := l.glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pattern)
		}
		slices.Sort(matches)
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			files = append(files, match)
		}
	}
	return files, nil
}

func (l *Loader) glob(pattern string) ([]string, error) {
	full := filepath.ToSlash(pattern)
	if !path.IsAbs(full) && l.baseDir != "." {
		full = path.Join(filepath.ToSlash(l.baseDir), full)
	}

	if path.IsAbs(full) {
		root := afero.NewIOFS(afero.NewBasePathFs(l.fs, "/"))
		matches, err := doublestar.Glob(root, strings.TrimPrefix(path.Clean(full), "/"), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("documents glob %s: %w", pattern, err)
		}
		for i, match := range matches {
			matches[i] = filepath.FromSlash("/" + match)
		}
		return matches, nil
	}

	cleaned := path.Clean(full)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPattern, pattern)
	}
	matches, err := doublestar.Glob(afero.NewIOFS(l.fs), cleaned, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("documents glob %s: %w", pattern, err)
	}
	for i, match := range matches {
		matches[i] = filepath.FromSlash(match)
	}
	return matches, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// LoadFile reads and parses a single Markdown file.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := afero.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("documents loader read %s: %w", name, err)
	}
	info, err := l.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("documents loader stat %s: %w", name, err)
	}

	doc, err := l.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("documents loader parse %s: %w", name, err)
	}
	doc.Path = name

	sum := sha256.Sum256(data)
	return &Source{
		Path:     name,
		Data:     data,
		Checksum: sum[:],
		ModTime:  info.ModTime(),
		Document: doc,
	}, nil
}
