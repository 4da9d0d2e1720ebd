package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

func commandDefinition(e *env) rules.Builtin {
	return rules.Builtin{
		Name:        NameCommand,
		Description: "Output of a shell style command line",
		Content: func(ctx context.Context, params rules.Params, _ *markdown.Document) (string, error) {
			line := params.String("run", "")
			if line == "" {
				return "", fmt.Errorf("%w: run", ErrMissingParam)
			}
			argv, err := shlex.Split(line)
			if err != nil {
				return "", fmt.Errorf("builtin: split %q: %w", line, err)
			}
			if len(argv) == 0 {
				return "", fmt.Errorf("%w: run", ErrMissingParam)
			}
			out, err := e.exec(ctx, argv[0], argv[1:]...)
			if err != nil {
				return "", err
			}
			return fence(strings.TrimSpace(out), params.String("fence", "")), nil
		},
	}
}

func cliHelpDefinition(e *env) rules.Builtin {
	return rules.Builtin{
		Name:        NameCLIHelp,
		Description: "Help text of a command line tool in a code block",
		Defaults: rules.Params{
			"args":  []any{"--help"},
			"fence": "txt",
		},
		Content: func(ctx context.Context, params rules.Params, _ *markdown.Document) (string, error) {
			name := params.String("cmd", "")
			if name == "" {
				return "", fmt.Errorf("%w: cmd", ErrMissingParam)
			}
			argv, err := shlex.Split(name)
			if err != nil {
				return "", fmt.Errorf("builtin: split %q: %w", name, err)
			}
			if len(argv) == 0 {
				return "", fmt.Errorf("%w: cmd", ErrMissingParam)
			}
			args := append(argv[1:], params.Strings("args")...)
			out, err := e.exec(ctx, argv[0], args...)
			if err != nil {
				return "", err
			}
			lang := params.String("fence", "txt")
			if lang == "" {
				lang = "txt"
			}
			return fence(strings.TrimRight(out, "\n"), lang), nil
		},
	}
}

func (e *env) exec(ctx context.Context, name string, args ...string) (string, error) {
	out, err := e.run(ctx, e.dir, name, args...)
	if err != nil {
		e.logger.Warn("builtin.command.failed", "command", name, "args", args, "error", err)
		return "", fmt.Errorf("builtin: run %s: %w", name, err)
	}
	e.logger.Debug("builtin.command.completed", "command", name, "bytes", len(out))
	return string(out), nil
}

// fence wraps body in a fenced code block tagged lang. An empty lang leaves
// body as is.
func fence(body, lang string) string {
	if lang == "" {
		return body
	}
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + body + "\n" + marker
}
