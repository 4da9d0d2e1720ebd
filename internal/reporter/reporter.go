// Package reporter renders document run results for terminals and logs.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithColor forces coloured output on or off, overriding terminal detection.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.color = enabled
	}
}

// WithVerbose includes info entries, which are hidden by default.
func WithVerbose(verbose bool) Option {
	return func(r *Reporter) {
		r.verbose = verbose
	}
}

// Reporter writes grouped, optionally coloured run summaries.
type Reporter struct {
	w       io.Writer
	color   bool
	verbose bool
	styles  styles
}

type styles struct {
	file    lipgloss.Style
	muted   lipgloss.Style
	error   lipgloss.Style
	warn    lipgloss.Style
	info    lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	summary lipgloss.Style
}

// New returns a reporter writing to w. Colour is enabled when w is a
// terminal.
func New(w io.Writer, opts ...Option) *Reporter {
	if w == nil {
		w = io.Discard
	}
	r := &Reporter{w: w, color: IsTerminal(w)}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	renderer := lipgloss.NewRenderer(w)
	r.styles = styles{
		file:    renderer.NewStyle().Bold(true),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("#888888")),
		error:   renderer.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("#F4BF4F")),
		info:    renderer.NewStyle().Foreground(lipgloss.Color("#5FAFD7")),
		header:  renderer.NewStyle().Bold(true).Padding(0, 1),
		cell:    renderer.NewStyle().Padding(0, 1),
		summary: renderer.NewStyle().Bold(true),
	}
	return r
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes the entries of every file followed by a summary line.
func (r *Reporter) Render(operation string, result *interfaces.DocumentResult) error {
	if result == nil {
		return nil
	}

	var out strings.Builder
	counts := Summarize(result)

	for _, file := range result.Files {
		entries := r.visible(file.Entries)
		if len(entries) == 0 && !file.Written {
			continue
		}

		out.WriteString(r.paint(r.styles.file, file.Path))
		if file.Written {
			if file.Target != "" && file.Target != file.Path {
				out.WriteString(r.paint(r.styles.muted, " -> "+file.Target))
			} else {
				out.WriteString(r.paint(r.styles.muted, " (updated)"))
			}
		}
		out.WriteString("\n")

		for _, entry := range entries {
			out.WriteString("  ")
			out.WriteString(r.severity(entry.Severity))
			out.WriteString(" ")
			out.WriteString(entryText(entry))
			out.WriteString("\n")
			if len(entry.Table) > 1 {
				out.WriteString(indent(r.table(entry.Table), "    "))
				out.WriteString("\n")
			}
		}
	}

	out.WriteString(r.paint(r.styles.summary, counts.Line(operation)))
	out.WriteString("\n")

	_, err := io.WriteString(r.w, out.String())
	return err
}

func (r *Reporter) visible(entries []interfaces.ReportEntry) []interfaces.ReportEntry {
	if r.verbose {
		return entries
	}
	out := make([]interfaces.ReportEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Severity != "info" {
			out = append(out, entry)
		}
	}
	return out
}

func (r *Reporter) severity(sev string) string {
	label := fmt.Sprintf("%-5s", sev)
	switch sev {
	case "error":
		return r.paint(r.styles.error, label)
	case "warn":
		return r.paint(r.styles.warn, label)
	default:
		return r.paint(r.styles.info, label)
	}
}

func (r *Reporter) table(rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(rows[0]...).
		Rows(rows[1:]...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.header
			}
			return r.styles.cell
		})
	if r.color {
		t = t.BorderStyle(r.styles.muted)
	}
	return t.String()
}

func (r *Reporter) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

func entryText(entry interfaces.ReportEntry) string {
	text := entry.Text
	if entry.Line > 0 {
		text = fmt.Sprintf("line %d: %s", entry.Line, text)
	}
	return text
}

func indent(block, prefix string) string {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// CatalogueEntry describes one registered built-in rule.
type CatalogueEntry struct {
	Name        string
	Description string
}

// RenderCatalogue lists the built-in rules as a table followed by the named
// rule sets.
func (r *Reporter) RenderCatalogue(builtins []CatalogueEntry, sets []string) error {
	var out strings.Builder

	out.WriteString(r.paint(r.styles.file, "Built-in rules"))
	out.WriteString("\n")
	rows := [][]string{{"name", "description"}}
	for _, entry := range builtins {
		rows = append(rows, []string{entry.Name, entry.Description})
	}
	out.WriteString(r.table(rows))
	out.WriteString("\n")

	if len(sets) > 0 {
		out.WriteString(r.paint(r.styles.file, "Rule sets"))
		out.WriteString("\n")
		for _, name := range sets {
			out.WriteString("  " + name + "\n")
		}
	}

	_, err := io.WriteString(r.w, out.String())
	return err
}
