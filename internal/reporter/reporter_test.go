package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

func sampleResult() *interfaces.DocumentResult {
	return &interfaces.DocumentResult{
		Files: []interfaces.FileResult{
			{
				Path:    "README.md",
				Target:  "README.md",
				Changed: true,
				Written: true,
				Entries: []interfaces.ReportEntry{
					{Severity: "info", Stage: "expand", Keyword: "title", Text: `Successfully expanded "title" comment`},
					{Severity: "warn", Stage: "check", Keyword: "badge", Text: `No rule for "badge" comment`, Line: 7},
				},
			},
			{
				Path: "docs/guide.md",
				Entries: []interfaces.ReportEntry{
					{
						Severity: "error",
						Stage:    "check",
						Text:     "Comments out of order",
						Table:    [][]string{{"Found", "Expected"}, {"1. toc", "1. title"}, {"2. title", "2. toc"}},
					},
				},
			},
			{Path: "docs/quiet.md"},
		},
	}
}

func TestRenderGroupsEntriesPerFile(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Render("expand", sampleResult()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"README.md (updated)",
		"  warn  line 7: No rule for \"badge\" comment",
		"docs/guide.md\n  error Comments out of order",
		"1. toc",
		"2. toc",
		"Expected",
		"expand: 3 files, 1 changed, 1 error, 1 warning",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Successfully expanded") {
		t.Fatalf("info entries should be hidden by default:\n%s", out)
	}
	if strings.Contains(out, "docs/quiet.md") {
		t.Fatalf("files without entries should be skipped:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes for a buffer writer:\n%s", out)
	}
}

func TestRenderVerboseShowsInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, WithVerbose(true)).Render("expand", sampleResult()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `info  Successfully expanded "title" comment`) {
		t.Fatalf("expected info entry, got:\n%s", buf.String())
	}
}

func TestRenderShowsRenamedTarget(t *testing.T) {
	var buf bytes.Buffer
	result := &interfaces.DocumentResult{Files: []interfaces.FileResult{
		{Path: "README.tpl.md", Target: "dist/README.md", Changed: true, Written: true},
	}}
	if err := New(&buf).Render("expand", result); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "README.tpl.md -> dist/README.md") {
		t.Fatalf("expected target arrow, got:\n%s", buf.String())
	}
}

func TestSummaryLine(t *testing.T) {
	counts := Summarize(sampleResult())
	if counts.Files != 3 || counts.Changed != 1 || counts.Written != 1 || counts.Errors != 1 || counts.Warnings != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if got := counts.Line("check"); got != "check: 3 files, 1 error, 1 warning" {
		t.Fatalf("unexpected check summary %q", got)
	}
	if got := (Counts{Files: 1}).Line(""); got != "1 file, 0 changed, 0 errors, 0 warnings" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestIsTerminalRejectsBuffers(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer should not be a terminal")
	}
}

func TestRenderCatalogueListsBuiltinsAndSets(t *testing.T) {
	var buf bytes.Buffer
	err := New(&buf).RenderCatalogue([]CatalogueEntry{
		{Name: "date", Description: "Current date"},
		{Name: "toc", Description: "Table of contents"},
	}, []string{"readme"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Built-in rules", "date", "Current date", "toc", "Rule sets", "  readme"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
