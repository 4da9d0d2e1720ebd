package documentscmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-mdexpand/internal/commands"
	"github.com/goliatone/go-mdexpand/internal/commands/fixtures"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

func TestExpandHandlerMapsSelectionOntoRequest(t *testing.T) {
	service := &fixtures.DocumentService{Result: &interfaces.DocumentResult{RunID: uuid.New()}}
	handler := NewExpandFilesHandler(service, nil, nil)

	msg := ExpandFilesCommand{FileSelection{
		Files:       []string{"README.md"},
		Output:      "dist",
		Name:        "INDEX",
		MetaComment: true,
		Syntax:      interfaces.SyntaxOptions{KeywordPrefix: "md:"},
	}}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(service.Calls) != 1 {
		t.Fatalf("expected one service call, got %d", len(service.Calls))
	}
	req := service.Calls[0].Request
	if req.Output != "dist" || req.Name != "INDEX" || !req.AddMetaComment || req.Syntax.KeywordPrefix != "md:" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Files) != 1 || req.Files[0] != "README.md" {
		t.Fatalf("unexpected files %v", req.Files)
	}
}

func TestHandlersRouteToServiceOperations(t *testing.T) {
	service := &fixtures.DocumentService{Result: &interfaces.DocumentResult{}}
	sel := FileSelection{Files: []string{"docs/**/*.md"}}
	ctx := context.Background()

	if err := NewCleanFilesHandler(service, nil, nil).Execute(ctx, CleanFilesCommand{sel}); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if err := NewCheckFilesHandler(service, nil, nil).Execute(ctx, CheckFilesCommand{sel}); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := NewExpandFilesHandler(service, nil, nil).Execute(ctx, ExpandFilesCommand{sel}); err != nil {
		t.Fatalf("expand: %v", err)
	}

	ops := make([]string, 0, len(service.Calls))
	for _, call := range service.Calls {
		ops = append(ops, call.Operation)
	}
	if got := strings.Join(ops, ","); got != "clean,check,expand" {
		t.Fatalf("unexpected call order %q", got)
	}
}

func TestHandlerSinkReceivesResult(t *testing.T) {
	result := &interfaces.DocumentResult{
		RunID: uuid.New(),
		Files: []interfaces.FileResult{{Path: "README.md", Changed: true, Written: true}},
	}
	service := &fixtures.DocumentService{Result: result}

	var (
		gotOp     string
		gotResult *interfaces.DocumentResult
	)
	sink := func(_ context.Context, op string, res *interfaces.DocumentResult) {
		gotOp, gotResult = op, res
	}

	handler := NewCheckFilesHandler(service, nil, sink)
	if err := handler.Execute(context.Background(), CheckFilesCommand{FileSelection{Files: []string{"README.md"}}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gotOp != "check" || gotResult != result {
		t.Fatalf("expected sink to receive check result, got %q %v", gotOp, gotResult)
	}
}

func TestHandlerValidationRejectsBadSelection(t *testing.T) {
	service := &fixtures.DocumentService{}
	handler := NewExpandFilesHandler(service, nil, nil)

	err := handler.Execute(context.Background(), ExpandFilesCommand{FileSelection{
		Files: []string{"a.md", "b.md"},
		Name:  "OUT.md",
	}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(service.Calls) != 0 {
		t.Fatal("expected service not to be called")
	}
}

func TestHandlerWrapsServiceError(t *testing.T) {
	serviceErr := errors.New("no files matched")
	service := &fixtures.DocumentService{Err: serviceErr}
	called := false
	handler := NewCleanFilesHandler(service, nil, func(context.Context, string, *interfaces.DocumentResult) {
		called = true
	})

	err := handler.Execute(context.Background(), CleanFilesCommand{FileSelection{Files: []string{"*.md"}}})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if code := commands.ErrorCode(err); code != commands.CodeRunFailed {
		t.Fatalf("expected %s, got %q", commands.CodeRunFailed, code)
	}
	if !errors.Is(err, serviceErr) {
		t.Fatalf("expected service error to be reachable, got %v", err)
	}
	if called {
		t.Fatal("expected sink to be skipped on failure")
	}
}

func TestRegisterDocumentCommandsRegistersHandlers(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	set, err := RegisterDocumentCommands(reg, &fixtures.DocumentService{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Handlers) != 3 {
		t.Fatalf("expected three handlers, got %d", len(reg.Handlers))
	}
	if reg.Handlers[0] != set.Expand || reg.Handlers[1] != set.Clean || reg.Handlers[2] != set.Check {
		t.Fatalf("unexpected registration order %#v", reg.Handlers)
	}
}

func TestRegisterDocumentCommandsAppliesOptions(t *testing.T) {
	applied := map[string]bool{}
	_, err := RegisterDocumentCommands(nil, &fixtures.DocumentService{}, nil,
		WithExpandHandlerOptions(func(*commands.Handler[ExpandFilesCommand]) { applied["expand"] = true }),
		WithCleanHandlerOptions(func(*commands.Handler[CleanFilesCommand]) { applied["clean"] = true }),
		WithCheckHandlerOptions(func(*commands.Handler[CheckFilesCommand]) { applied["check"] = true }),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("expected all handler options applied, got %v", applied)
	}
}

func TestRegisterDocumentCommandsErrors(t *testing.T) {
	if _, err := RegisterDocumentCommands(nil, nil, nil); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}

	reg := fixtures.NewRecordingRegistry()
	reg.Err = errors.New("registry closed")
	if _, err := RegisterDocumentCommands(reg, &fixtures.DocumentService{}, nil); err == nil {
		t.Fatal("expected registry error to propagate")
	}
}
