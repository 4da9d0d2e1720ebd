package reporter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// Counts tallies a run.
type Counts struct {
	Files    int
	Changed  int
	Written  int
	Errors   int
	Warnings int
}

// Summarize counts files and entries in result.
func Summarize(result *interfaces.DocumentResult) Counts {
	var c Counts
	if result == nil {
		return c
	}
	c.Files = len(result.Files)
	for _, file := range result.Files {
		if file.Changed {
			c.Changed++
		}
		if file.Written {
			c.Written++
		}
		for _, entry := range file.Entries {
			switch entry.Severity {
			case "error":
				c.Errors++
			case "warn":
				c.Warnings++
			}
		}
	}
	return c
}

// Line renders the counts as a one line summary.
func (c Counts) Line(operation string) string {
	parts := []string{plural(c.Files, "file")}
	if operation != "check" {
		parts = append(parts, fmt.Sprintf("%d changed", c.Changed))
	}
	parts = append(parts, plural(c.Errors, "error"), plural(c.Warnings, "warning"))

	line := strings.Join(parts, ", ")
	if operation != "" {
		line = operation + ": " + line
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
