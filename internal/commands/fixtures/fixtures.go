// Package fixtures holds recorders shared by the command tests.
package fixtures

import (
	"context"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// RecordingRegistry captures command handlers passed to RegisterCommand.
type RecordingRegistry struct {
	Handlers []any
	Err      error
}

func NewRecordingRegistry() *RecordingRegistry {
	return &RecordingRegistry{}
}

// RegisterCommand records handler, or returns Err when it is set.
func (r *RecordingRegistry) RegisterCommand(handler any) error {
	if r.Err != nil {
		return r.Err
	}
	r.Handlers = append(r.Handlers, handler)
	return nil
}

// DocumentCall is one request seen by DocumentService.
type DocumentCall struct {
	Operation string
	Request   interfaces.DocumentRequest
}

// DocumentService records requests and answers every operation with Result
// and Err.
type DocumentService struct {
	Calls  []DocumentCall
	Result *interfaces.DocumentResult
	Err    error
}

var _ interfaces.DocumentService = (*DocumentService)(nil)

func (s *DocumentService) record(op string, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	s.Calls = append(s.Calls, DocumentCall{Operation: op, Request: req})
	return s.Result, s.Err
}

func (s *DocumentService) Expand(_ context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	return s.record("expand", req)
}

func (s *DocumentService) Clean(_ context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	return s.record("clean", req)
}

func (s *DocumentService) Check(_ context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error) {
	return s.record("check", req)
}
