// Package documents runs the expand, clean and check passes over files.
package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/engine"
	"github.com/goliatone/go-mdexpand/internal/identity"
	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/marker"
	"github.com/goliatone/go-mdexpand/internal/report"
	"github.com/goliatone/go-mdexpand/internal/rules"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

const (
	operationExpand = "expand"
	operationClean  = "clean"
	operationCheck  = "check"

	defaultExtension = ".md"
)

// Service implements interfaces.DocumentService on an afero filesystem.
type Service struct {
	fs      afero.Fs
	baseDir string
	engine  *engine.Engine
	rules   rules.Set
	loader  *Loader
	logger  interfaces.Logger
	writer  io.Writer
	perm    os.FileMode
	parser  *markdown.Parser
}

var _ interfaces.DocumentService = (*Service)(nil)

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithFS sets the filesystem files are read from and written to.
func WithFS(fs afero.Fs) ServiceOption {
	return func(s *Service) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) ServiceOption {
	return func(s *Service) {
		s.baseDir = strings.TrimSpace(dir)
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWriter sets where printed documents go.
func WithWriter(w io.Writer) ServiceOption {
	return func(s *Service) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithFileMode sets the permissions of newly created output files.
func WithFileMode(perm os.FileMode) ServiceOption {
	return func(s *Service) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// WithParser selects the Markdown dialect used to read files.
func WithParser(parser *markdown.Parser) ServiceOption {
	return func(s *Service) {
		s.parser = parser
	}
}

// NewService binds set to eng. Relative paths resolve against the process
// working directory unless WithBaseDir is given.
func NewService(eng *engine.Engine, set rules.Set, opts ...ServiceOption) *Service {
	s := &Service{
		fs:     afero.NewOsFs(),
		engine: eng,
		rules:  set,
		logger: logging.NoOp(),
		writer: os.Stdout,
		perm:   0o644,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.engine == nil {
		s.engine = engine.New()
	}
	s.loader = NewLoader(s.fs, s.baseDir, s.parser)
	return s
}

// Expand cleans and re-expands every matched file.
func (s *Service) Expand(ctx context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	return s.run(ctx, operationExpand, req, s.engine.Process)
}

// Clean collapses generated regions back to bare placeholders.
func (s *Service) Clean(ctx context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	return s.run(ctx, operationClean, req, s.engine.Clean)
}

// Check validates matched files. Nothing is written or printed.
func (s *Service) Check(ctx context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	req.Print = false
	return s.run(ctx, operationCheck, req, s.engine.Check)
}

type pass func(context.Context, *markdown.Document, engine.Options) (*report.Report, error)

func (s *Service) run(ctx context.Context, operation string, req interfaces.DocumentRequest, run pass) (*interfaces.DocumentResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := identity.RunID()
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": runID.String()})
	logger := logging.WithFields(s.logger.WithContext(ctx), map[string]any{
		"operation": "documents." + operation,
	})

	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}
	if _, err := rules.Normalize(s.rules); err != nil {
		logger.Error("documents.rules.invalid", "error", err)
		return nil, err
	}

	files, err := s.loader.Match(ctx, req.Files)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, strings.Join(req.Files, ", "))
	}
	if strings.TrimSpace(req.Name) != "" && len(files) > 1 {
		return nil, fmt.Errorf("%w: %d files matched", ErrNameNeedsSingleFile, len(files))
	}

	opts := engine.Options{
		AddMetaComment: req.AddMetaComment,
		Syntax: marker.Syntax{
			KeywordPrefix:  req.Syntax.KeywordPrefix,
			ClosingPrefix:  req.Syntax.ClosingPrefix,
			MetaIdentifier: req.Syntax.MetaIdentifier,
		},
		Rules: s.rules,
	}

	result := &interfaces.DocumentResult{RunID: runID}
	started := time.Now()
	for _, file := range files {
		fileResult, err := s.processFile(ctx, operation, file, req, opts, run)
		if err != nil {
			logger.Error("documents.file.failed", "path", file, "error", err)
			return result, err
		}
		result.Files = append(result.Files, fileResult)
	}

	logger.Info("documents."+operation+".completed",
		"files", len(result.Files),
		"has_errors", result.HasErrors(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

func (s *Service) processFile(ctx context.Context, operation, file string, req interfaces.DocumentRequest, opts engine.Options, run pass) (interfaces.FileResult, error) {
	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), s.display(file), "documents."+operation)

	src, err := s.loader.LoadFile(ctx, file)
	if err != nil {
		return interfaces.FileResult{}, err
	}

	rep, err := run(ctx, src.Document, opts)
	if err != nil {
		return interfaces.FileResult{}, fmt.Errorf("%s %s: %w", operation, s.display(file), err)
	}

	out := src.Document.Bytes()
	target := s.target(file, req)
	fileResult := interfaces.FileResult{
		Path:       s.display(file),
		Target:     s.display(target),
		DocumentID: identity.DocumentID(s.display(file)),
		Changed:    string(out) != string(src.Data),
		Entries:    Entries(rep),
	}

	switch {
	case operation == operationCheck:
		fileResult.Target = ""
	case req.Print:
		if _, err := s.writer.Write(out); err != nil {
			return fileResult, fmt.Errorf("print %s: %w", fileResult.Path, err)
		}
	case fileResult.Changed || target != file:
		if err := s.write(target, out); err != nil {
			return fileResult, err
		}
		fileResult.Written = true
		logger.Info("documents.file.written", "target", fileResult.Target, "bytes", len(out))
	default:
		logger.Debug("documents.file.unchanged")
	}
	return fileResult, nil
}

func (s *Service) target(file string, req interfaces.DocumentRequest) string {
	dir := filepath.Dir(file)
	if output := strings.TrimSpace(req.Output); output != "" {
		dir = output
		if !filepath.IsAbs(dir) && s.baseDir != "" {
			dir = filepath.Join(s.baseDir, dir)
		}
	}
	name := filepath.Base(file)
	if custom := strings.TrimSpace(req.Name); custom != "" {
		name = custom
		if filepath.Ext(name) == "" {
			name += defaultExtension
		}
	}
	return filepath.Join(dir, name)
}

func (s *Service) write(target string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("documents mkdir %s: %w", filepath.Dir(target), err)
	}
	if err := afero.WriteFile(s.fs, target, data, s.perm); err != nil {
		return fmt.Errorf("documents write %s: %w", target, err)
	}
	return nil
}

// display shortens paths under the base directory.
func (s *Service) display(file string) string {
	if s.baseDir == "" {
		return file
	}
	rel, err := filepath.Rel(s.baseDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return rel
}

// Entries converts report messages into their serialisable form.
func Entries(rep *report.Report) []interfaces.ReportEntry {
	messages := rep.Messages()
	if len(messages) == 0 {
		return nil
	}
	out := make([]interfaces.ReportEntry, 0, len(messages))
	for _, m := range messages {
		out = append(out, interfaces.ReportEntry{
			Severity: string(m.Severity),
			Stage:    string(m.Stage),
			Code:     m.Code,
			Keyword:  m.Keyword,
			Text:     m.Text,
			Line:     m.Line,
			Table:    m.Table,
		})
	}
	return out
}
