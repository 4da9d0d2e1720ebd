package documents_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/documents"
	"github.com/goliatone/go-mdexpand/internal/engine"
	"github.com/goliatone/go-mdexpand/internal/rules"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

const readme = "# Demo\n\n<!-- version -->\n"

func newFixture(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fs
}

func newService(fs afero.Fs, set rules.Set, opts ...documents.ServiceOption) *documents.Service {
	eng := engine.New(engine.WithClock(func() time.Time {
		return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	}))
	opts = append([]documents.ServiceOption{documents.WithFS(fs), documents.WithBaseDir("/repo")}, opts...)
	return documents.NewService(eng, set, opts...)
}

func versionRules() rules.Set {
	return rules.Set{"version": rules.Text("1.2.3")}
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

func TestExpandWritesInPlace(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/README.md": readme})
	svc := newService(fs, versionRules())

	result, err := svc.Expand(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected one file result, got %+v", result.Files)
	}
	file := result.Files[0]
	if file.Path != "README.md" || !file.Changed || !file.Written || file.HasErrors() {
		t.Fatalf("unexpected file result %+v", file)
	}
	want := "# Demo\n\n<!-- version -->\n\n1.2.3\n\n<!-- /version -->\n"
	if got := readFile(t, fs, "/repo/README.md"); got != want {
		t.Fatalf("unexpected file content\nwant: %q\ngot:  %q", want, got)
	}

	again, err := svc.Expand(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}})
	if err != nil {
		t.Fatalf("second expand: %v", err)
	}
	if again.Files[0].Changed || again.Files[0].Written {
		t.Fatalf("second run must leave the file alone, got %+v", again.Files[0])
	}
	if again.Files[0].DocumentID != file.DocumentID || again.RunID == result.RunID {
		t.Fatal("document ids must be stable and run ids fresh")
	}
}

func TestExpandOutputDirectoryAndName(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/docs/source.md": readme})
	svc := newService(fs, versionRules())

	result, err := svc.Expand(context.Background(), interfaces.DocumentRequest{
		Files:  []string{"docs/*.md"},
		Output: "dist",
		Name:   "README",
	})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if result.Files[0].Target != "dist/README.md" {
		t.Fatalf("unexpected target %q", result.Files[0].Target)
	}
	if got := readFile(t, fs, "/repo/dist/README.md"); !strings.Contains(got, "1.2.3") {
		t.Fatalf("output not written: %q", got)
	}
	if got := readFile(t, fs, "/repo/docs/source.md"); got != readme {
		t.Fatalf("source must not change, got %q", got)
	}
}

func TestNameRequiresSingleFile(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/a.md": readme, "/repo/b.md": readme})
	_, err := newService(fs, versionRules()).Expand(context.Background(), interfaces.DocumentRequest{
		Files: []string{"*.md"},
		Name:  "out.md",
	})
	if !errors.Is(err, documents.ErrNameNeedsSingleFile) {
		t.Fatalf("expected ErrNameNeedsSingleFile, got %v", err)
	}
}

func TestPrintWritesToWriter(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/README.md": readme})
	var buf bytes.Buffer
	svc := newService(fs, versionRules(), documents.WithWriter(&buf))

	result, err := svc.Expand(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}, Print: true})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if result.Files[0].Written {
		t.Fatal("printed files must not be written")
	}
	if !strings.Contains(buf.String(), "<!-- /version -->") {
		t.Fatalf("unexpected printed output %q", buf.String())
	}
	if got := readFile(t, fs, "/repo/README.md"); got != readme {
		t.Fatalf("source must not change, got %q", got)
	}
}

func TestCleanRestoresFile(t *testing.T) {
	expanded := "# Demo\n\n<!-- version -->\n\n1.2.3\n\n<!-- /version -->\n"
	fs := newFixture(t, map[string]string{"/repo/README.md": expanded})

	result, err := newService(fs, nil).Clean(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !result.Files[0].Written {
		t.Fatalf("expected cleaned file to be written, got %+v", result.Files[0])
	}
	if got := readFile(t, fs, "/repo/README.md"); got != readme {
		t.Fatalf("unexpected cleaned content %q", got)
	}
}

func TestCheckNeverWrites(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/README.md": readme})
	set := rules.Set{
		"version": rules.Text("1.2.3"),
		"license": rules.Meta(rules.Metadata{Content: rules.Text("MIT"), Required: true}),
	}

	result, err := newService(fs, set).Check(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.HasErrors() {
		t.Fatal("expected missing required comment to be an error")
	}
	file := result.Files[0]
	if file.Written || file.Changed || file.Target != "" {
		t.Fatalf("check must not write, got %+v", file)
	}
	if file.Entries[0].Code != "missing-required" || file.Entries[0].Keyword != "license" {
		t.Fatalf("unexpected entries %+v", file.Entries)
	}
}

func TestRequestErrors(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/README.md": readme})
	svc := newService(fs, versionRules())

	cases := []struct {
		name  string
		files []string
		want  error
	}{
		{name: "no files", want: documents.ErrNoFiles},
		{name: "pattern without matches", files: []string{"docs/**/*.md"}, want: documents.ErrNoFiles},
		{name: "missing literal", files: []string{"MISSING.md"}, want: documents.ErrFileNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Expand(context.Background(), interfaces.DocumentRequest{Files: tc.files})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestInvalidRulesFailBeforeTouchingFiles(t *testing.T) {
	fs := newFixture(t, map[string]string{"/repo/README.md": readme})
	_, err := newService(fs, rules.Set{"version": {}}).Expand(context.Background(), interfaces.DocumentRequest{Files: []string{"README.md"}})
	if !errors.Is(err, rules.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
	if got := readFile(t, fs, "/repo/README.md"); got != readme {
		t.Fatalf("file changed despite invalid rules: %q", got)
	}
}
