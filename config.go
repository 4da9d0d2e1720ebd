package mdexpand

import (
	"github.com/goliatone/go-mdexpand/internal/runtimeconfig"
)

var (
	ErrFilesRequired           = runtimeconfig.ErrFilesRequired
	ErrNameRequiresSingleFile  = runtimeconfig.ErrNameRequiresSingleFile
	ErrPrintWithOutput         = runtimeconfig.ErrPrintWithOutput
	ErrSyntaxAmbiguous         = runtimeconfig.ErrSyntaxAmbiguous
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigFileInvalid       = runtimeconfig.ErrConfigFileInvalid
)

type (
	Config        = runtimeconfig.Config
	SyntaxConfig  = runtimeconfig.SyntaxConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	LoadOptions   = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers defaults, the config file, MDEXPAND_ environment
// variables and opts.Overrides. It returns the config file used, if any.
func LoadConfig(opts LoadOptions) (Config, string, error) {
	return runtimeconfig.Load(opts)
}
