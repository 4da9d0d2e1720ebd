package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// DocumentService runs the placeholder workflows against Markdown files. The
// rule set is bound when the service is constructed; requests only select
// files and output behaviour.
type DocumentService interface {
	// Expand cleans and re-expands every matched file.
	Expand(ctx context.Context, req DocumentRequest) (*DocumentResult, error)
	// Clean collapses generated regions back to bare placeholders.
	Clean(ctx context.Context, req DocumentRequest) (*DocumentResult, error)
	// Check validates matched files without writing anything.
	Check(ctx context.Context, req DocumentRequest) (*DocumentResult, error)
}

// SyntaxOptions configures how placeholder comments are recognised.
type SyntaxOptions struct {
	KeywordPrefix  string `json:"keyword_prefix,omitempty" yaml:"keyword_prefix"`
	ClosingPrefix  string `json:"closing_prefix,omitempty" yaml:"closing_prefix"`
	MetaIdentifier string `json:"meta_identifier,omitempty" yaml:"meta_identifier"`
}

// DocumentRequest selects input files and output behaviour for one run.
type DocumentRequest struct {
	// Files holds paths or doublestar patterns relative to the service filesystem.
	Files []string
	// Output writes results into this directory instead of in place.
	Output string
	// Name renames the output file. Only valid with a single input file.
	Name string
	// Print sends results to the service writer instead of the filesystem.
	Print bool
	// AddMetaComment prepends the generated-content warning on expand and
	// requires it on check.
	AddMetaComment bool
	Syntax         SyntaxOptions
}

// DocumentResult aggregates per-file outcomes.
type DocumentResult struct {
	RunID uuid.UUID
	Files []FileResult
}

// HasErrors reports whether any file carries an error-level entry.
func (r *DocumentResult) HasErrors() bool {
	if r == nil {
		return false
	}
	for _, file := range r.Files {
		if file.HasErrors() {
			return true
		}
	}
	return false
}

// FileResult describes what happened to a single file.
type FileResult struct {
	Path       string
	Target     string
	DocumentID uuid.UUID
	Changed    bool
	Written    bool
	Entries    []ReportEntry
}

// HasErrors reports whether the file report holds an error-level entry.
func (f FileResult) HasErrors() bool {
	for _, entry := range f.Entries {
		if entry.Severity == "error" {
			return true
		}
	}
	return false
}

// ReportEntry is the serialisable form of a single report message.
type ReportEntry struct {
	Severity string     `json:"severity"`
	Stage    string     `json:"stage"`
	Code     string     `json:"code,omitempty"`
	Keyword  string     `json:"keyword,omitempty"`
	Text     string     `json:"text"`
	Line     int        `json:"line,omitempty"`
	Table    [][]string `json:"table,omitempty"`
}
