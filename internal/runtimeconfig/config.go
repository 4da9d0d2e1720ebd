package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrFilesRequired indicates that no input file or pattern was configured.
var ErrFilesRequired = errors.New("mdexpand config: at least one input file is required")

// ErrNameRequiresSingleFile guards output renaming against several inputs.
var ErrNameRequiresSingleFile = errors.New("mdexpand config: output name requires a single input file")

// ErrPrintWithOutput rejects printing combined with an output location.
var ErrPrintWithOutput = errors.New("mdexpand config: print cannot be combined with output or name")

// ErrSyntaxAmbiguous indicates closing prefix and meta identifier collide.
var ErrSyntaxAmbiguous = errors.New("mdexpand config: closing prefix and meta identifier must differ")

var ErrCommandTimeoutInvalid = errors.New("mdexpand config: command timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("mdexpand config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("mdexpand config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("mdexpand config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("mdexpand config: logging format is invalid")

// Config aggregates every setting the CLI and the module facade accept.
type Config struct {
	// Files are paths or doublestar patterns of the documents to process.
	Files []string `koanf:"files" json:"files" yaml:"files"`
	// Rules lists rule files and built-in rule set names, later entries
	// winning per keyword.
	Rules  []string `koanf:"rules" json:"rules" yaml:"rules"`
	Output string   `koanf:"output" json:"output" yaml:"output"`
	Name   string   `koanf:"name" json:"name" yaml:"name"`
	Print  bool     `koanf:"print" json:"print" yaml:"print"`

	Syntax      SyntaxConfig `koanf:"syntax" json:"syntax" yaml:"syntax"`
	MetaComment bool         `koanf:"meta_comment" json:"meta_comment" yaml:"meta_comment"`
	// Check validates instead of expanding.
	Check bool `koanf:"check" json:"check" yaml:"check"`
	// Extensions selects goldmark extensions; empty means GFM.
	Extensions []string `koanf:"extensions" json:"extensions" yaml:"extensions"`

	Logging        LoggingConfig `koanf:"logging" json:"logging" yaml:"logging"`
	CommandTimeout time.Duration `koanf:"command_timeout" json:"command_timeout" yaml:"command_timeout"`
}

// SyntaxConfig controls marker recognition.
type SyntaxConfig struct {
	KeywordPrefix  string `koanf:"keyword_prefix" json:"keyword_prefix" yaml:"keyword_prefix"`
	ClosingPrefix  string `koanf:"closing_prefix" json:"closing_prefix" yaml:"closing_prefix"`
	MetaIdentifier string `koanf:"meta_identifier" json:"meta_identifier" yaml:"meta_identifier"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `koanf:"provider" json:"provider" yaml:"provider"`
	Level     string   `koanf:"level" json:"level" yaml:"level"`
	Format    string   `koanf:"format" json:"format" yaml:"format"`
	AddSource bool     `koanf:"add_source" json:"add_source" yaml:"add_source"`
	Focus     []string `koanf:"focus" json:"focus" yaml:"focus"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Files: []string{"README.md"},
		Rules: []string{"readme"},
		Syntax: SyntaxConfig{
			ClosingPrefix:  "/",
			MetaIdentifier: "+",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "warn",
			Format:   "console",
		},
	}
}

var affixPattern = regexp.MustCompile(`^[^\s<>]*$`)

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.Files) == 0 {
		return ErrFilesRequired
	}
	if strings.TrimSpace(cfg.Name) != "" && len(cfg.Files) > 1 {
		return ErrNameRequiresSingleFile
	}
	if cfg.Print && (strings.TrimSpace(cfg.Output) != "" || strings.TrimSpace(cfg.Name) != "") {
		return ErrPrintWithOutput
	}
	if cfg.Syntax.ClosingPrefix != "" && cfg.Syntax.ClosingPrefix == cfg.Syntax.MetaIdentifier {
		return fmt.Errorf("%w: %q", ErrSyntaxAmbiguous, cfg.Syntax.ClosingPrefix)
	}
	if cfg.CommandTimeout < 0 {
		return ErrCommandTimeoutInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Files, validation.Each(validation.Required)),
		validation.Field(&cfg.Rules, validation.Each(validation.Required)),
		validation.Field(&cfg.Syntax),
	)
}

// Validate checks marker affixes for characters that cannot appear inside a
// comment keyword.
func (s SyntaxConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.KeywordPrefix, validation.Match(affixPattern)),
		validation.Field(&s.ClosingPrefix, validation.Match(affixPattern)),
		validation.Field(&s.MetaIdentifier, validation.Match(affixPattern)),
	)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
