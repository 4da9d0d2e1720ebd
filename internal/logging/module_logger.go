package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

const (
	rootModule      = "mdexpand"
	engineModule    = "mdexpand.engine"
	rulesModule     = "mdexpand.rules"
	documentsModule = "mdexpand.documents"
	builtinModule   = "mdexpand.builtin"
	commandsModule  = "mdexpand.commands"
)

const (
	fieldDocumentPath      = "document_path"
	fieldDocumentOperation = "operation"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or a
// provider that returns nil, yields the no-op logger. The module name is
// attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// EngineLogger returns the logger used by the expand, clean and check passes.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// RulesLogger returns the logger used while loading and normalising rules.
func RulesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rulesModule)
}

// DocumentsLogger returns the logger used by file level workflows.
func DocumentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, documentsModule)
}

// BuiltinLogger returns the logger handed to built-in rules.
func BuiltinLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, builtinModule)
}

// CommandsLogger returns the logger for one group of command handlers,
// named "mdexpand.commands.<group>".
func CommandsLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	if group == "" {
		return ModuleLogger(provider, commandsModule)
	}
	return ModuleLogger(provider, commandsModule+"."+group)
}

// WithDocumentContext adds the document path and operation to logger.
// Blank values are skipped.
func WithDocumentContext(logger interfaces.Logger, path, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldDocumentOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
