package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

type harness struct {
	fs     afero.Fs
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, files map[string]string) *harness {
	t.Helper()
	h := &harness{fs: afero.NewMemMapFs()}
	for name, content := range files {
		if err := afero.WriteFile(h.fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return run(context.Background(), args, &app{
		fs:      h.fs,
		dir:     "/repo",
		environ: func() []string { return nil },
		stdout:  &h.stdout,
		stderr:  &h.stderr,
	})
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

const versionRules = "version: v1.4.0\n"

func TestExpandIsTheDefaultCommand(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/README.md": "# Tool\n\n<!-- version -->\n",
		"/repo/rules.yml": versionRules,
	})

	if code := h.run("-r", "rules.yml"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if got := h.read(t, "/repo/README.md"); !strings.Contains(got, "<!-- version -->\n\nv1.4.0\n\n<!-- /version -->") {
		t.Fatalf("unexpected document %q", got)
	}
	if !strings.Contains(h.stdout.String(), "README.md (updated)") {
		t.Fatalf("expected report on stdout, got %q", h.stdout.String())
	}
}

func TestCleanRemovesGeneratedContent(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/docs/a.md": "# A\n\n<!-- version -->\n\nold\n\n<!-- /version -->\n",
		"/repo/rules.yml": versionRules,
	})

	if code := h.run("clean", "-r", "rules.yml", "docs/*.md"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if got := h.read(t, "/repo/docs/a.md"); got != "# A\n\n<!-- version -->\n" {
		t.Fatalf("unexpected cleaned document %q", got)
	}
}

func TestCheckFailsOnMissingRequiredRule(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/README.md": "# Tool\n",
		"/repo/rules.yml": "license:\n  content: MIT\n  required: true\n",
	})

	if code := h.run("check", "-r", "rules.yml"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(h.stdout.String(), "error") {
		t.Fatalf("expected an error entry, got %q", h.stdout.String())
	}
	if h.read(t, "/repo/README.md") != "# Tool\n" {
		t.Fatal("check must not write")
	}
}

func TestExpandCheckFlagDoesNotWrite(t *testing.T) {
	source := "# Tool\n\n<!-- version -->\n"
	h := newHarness(t, map[string]string{
		"/repo/README.md": source,
		"/repo/rules.yml": versionRules,
	})

	if code := h.run("expand", "--check", "-r", "rules.yml"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if got := h.read(t, "/repo/README.md"); got != source {
		t.Fatalf("expected untouched document, got %q", got)
	}
	if !strings.HasPrefix(strings.TrimSpace(lastLine(h.stdout.String())), "check:") {
		t.Fatalf("expected a check summary, got %q", h.stdout.String())
	}
}

func TestPrintSendsDocumentToStdoutAndReportToStderr(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/README.md": "# Tool\n\n<!-- version -->\n",
		"/repo/rules.yml": versionRules,
	})

	if code := h.run("--print", "-r", "rules.yml"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "v1.4.0") {
		t.Fatalf("expected printed document, got %q", h.stdout.String())
	}
	if !strings.Contains(h.stderr.String(), "expand:") {
		t.Fatalf("expected report on stderr, got %q", h.stderr.String())
	}
	if strings.Contains(h.read(t, "/repo/README.md"), "v1.4.0") {
		t.Fatal("print must not write the source file")
	}
}

func TestOutputAndNameWriteElsewhere(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/README.md": "# Tool\n\n<!-- version -->\n",
		"/repo/rules.yml": versionRules,
	})

	if code := h.run("-r", "rules.yml", "-o", "dist", "-n", "OUT.md"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if !strings.Contains(h.read(t, "/repo/dist/OUT.md"), "v1.4.0") {
		t.Fatal("expected renamed output")
	}
}

func TestConfigFileIsLoaded(t *testing.T) {
	h := newHarness(t, map[string]string{
		"/repo/mdexpand.yaml": "files:\n  - guide.md\nrules:\n  - rules.yml\nsyntax:\n  keyword_prefix: mm-\n",
		"/repo/guide.md":      "# Guide\n\n<!-- mm-version -->\n",
		"/repo/rules.yml":     versionRules,
	})

	if code := h.run(); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	if got := h.read(t, "/repo/guide.md"); !strings.Contains(got, "<!-- /mm-version -->") {
		t.Fatalf("expected prefixed markers, got %q", got)
	}
}

func TestInvalidFlagsCombination(t *testing.T) {
	h := newHarness(t, map[string]string{"/repo/README.md": "# Tool\n"})

	if code := h.run("--print", "-o", "dist"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "print cannot be combined") {
		t.Fatalf("unexpected stderr %q", h.stderr.String())
	}
}

func TestRulesListsBuiltins(t *testing.T) {
	h := newHarness(t, nil)

	if code := h.run("rules"); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, h.stderr.String())
	}
	for _, want := range []string{"table-of-contents", "cli-help", "json-field", "readme"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Fatalf("expected %q in %q", want, h.stdout.String())
		}
	}
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	h := newHarness(t, nil)
	if code := h.run("--nope"); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
