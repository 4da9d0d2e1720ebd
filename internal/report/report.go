// Package report collects the messages produced by expand, clean and check
// passes.
package report

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

// Severity ranks a message.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Stage names the pass that produced a message.
type Stage string

const (
	StageExpand Stage = "expand"
	StageClean  Stage = "clean"
	StageCheck  Stage = "check"
)

// Codes identify the condition behind a message.
const (
	CodeExpanded        = "expanded"
	CodeContentFailed   = "content-failed"
	CodeEmptyContent    = "empty-content"
	CodeMismatch        = "marker-mismatch"
	CodeMissingRequired = "missing-required"
	CodeMissingOptional = "missing-optional"
	CodeOrder           = "comment-order"
	CodeMeta            = "meta-comment"
	CodeMissingRule     = "missing-rule"
	CodeMissingPrefix   = "missing-prefix"
)

// Message is one report entry.
type Message struct {
	Severity Severity
	Stage    Stage
	Code     string
	Keyword  string
	Text     string
	// Line is the 1-based source line of Node, 0 when unknown.
	Line int
	Node *markdown.Node
	// Table holds tabular detail, first row is the header.
	Table [][]string
}

func (m Message) String() string {
	if m.Line > 0 {
		return fmt.Sprintf("%s [%s] line %d: %s", m.Severity, m.Stage, m.Line, m.Text)
	}
	return fmt.Sprintf("%s [%s]: %s", m.Severity, m.Stage, m.Text)
}

// Report is an ordered list of messages.
type Report struct {
	messages []Message
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// Add appends m.
func (r *Report) Add(m Message) {
	if m.Node != nil && m.Line == 0 {
		m.Line = m.Node.Line
	}
	r.messages = append(r.messages, m)
}

// Errorf appends an error message.
func (r *Report) Errorf(stage Stage, code, keyword string, node *markdown.Node, format string, args ...any) {
	r.add(SeverityError, stage, code, keyword, node, format, args)
}

// Warnf appends a warning.
func (r *Report) Warnf(stage Stage, code, keyword string, node *markdown.Node, format string, args ...any) {
	r.add(SeverityWarn, stage, code, keyword, node, format, args)
}

// Infof appends an informational message.
func (r *Report) Infof(stage Stage, code, keyword string, node *markdown.Node, format string, args ...any) {
	r.add(SeverityInfo, stage, code, keyword, node, format, args)
}

func (r *Report) add(sev Severity, stage Stage, code, keyword string, node *markdown.Node, format string, args []any) {
	r.Add(Message{
		Severity: sev,
		Stage:    stage,
		Code:     code,
		Keyword:  keyword,
		Text:     fmt.Sprintf(format, args...),
		Node:     node,
	})
}

// Messages returns a copy of all messages in insertion order.
func (r *Report) Messages() []Message {
	if r == nil {
		return nil
	}
	return slices.Clone(r.messages)
}

// Filter returns messages of the given severity.
func (r *Report) Filter(sev Severity) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Severity == sev {
			out = append(out, m)
		}
	}
	return out
}

// WithCode returns messages carrying code.
func (r *Report) WithCode(code string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Code == code {
			out = append(out, m)
		}
	}
	return out
}

// Count returns the number of messages of the given severity.
func (r *Report) Count(sev Severity) int {
	return len(r.Filter(sev))
}

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Append copies the messages of other onto r.
func (r *Report) Append(other *Report) {
	if other == nil {
		return
	}
	r.messages = append(r.messages, other.messages...)
}

// Len returns the number of messages.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.messages)
}
