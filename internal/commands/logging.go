package commands

import (
	"strings"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// CommandLogger scopes a logger to one group of command handlers, for example
// "documents". Entries are tagged with the group so a focus filter on
// "mdexpand.commands" catches every handler.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "default"
	}
	return logging.WithFields(logging.CommandsLogger(provider, group), map[string]any{
		"handler_group": group,
	})
}
