package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/goccy/go-yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "MDEXPAND_"

// ConfigFileNames are searched, in order, when no config file is named.
var ConfigFileNames = []string{"mdexpand.yaml", "mdexpand.yml", "mdexpand.json", ".mdexpand.yaml"}

// ErrConfigFileInvalid wraps decoding failures of the config file.
var ErrConfigFileInvalid = errors.New("mdexpand config: config file is invalid")

var (
	sections = map[string]struct{}{"syntax": {}, "logging": {}}
	listKeys = map[string]struct{}{"files": {}, "rules": {}, "extensions": {}, "logging.focus": {}}
)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// File names the config file explicitly. A missing named file is an
	// error; a missing searched file is not.
	File string
	// Dir is searched for ConfigFileNames when File is empty.
	Dir string
	// Environ provides the environment, os.Environ when nil.
	Environ func() []string
	// Overrides are merged last; non-zero fields win.
	Overrides *Config
}

// Load layers struct defaults, the config file, MDEXPAND_* environment
// variables and explicit overrides, then validates the result. It returns
// the path of the config file used, empty when none was found.
func Load(opts LoadOptions) (Config, string, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, "", fmt.Errorf("load defaults: %w", err)
	}

	file, err := findConfigFile(fs, opts.File, opts.Dir)
	if err != nil {
		return Config{}, "", err
	}
	if file != "" {
		data, err := readConfigFile(fs, file)
		if err != nil {
			return Config{}, "", err
		}
		if err := k.Load(rawMap(data), nil); err != nil {
			return Config{}, "", fmt.Errorf("apply config file %s: %w", file, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
		EnvironFunc:   opts.Environ,
	}), nil); err != nil {
		return Config{}, "", fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, "", fmt.Errorf("unmarshal configuration: %w", err)
	}

	if opts.Overrides != nil {
		if err := Merge(&cfg, *opts.Overrides); err != nil {
			return Config{}, "", err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, file, err
	}
	return cfg, file, nil
}

// Merge copies the non-zero fields of overrides onto cfg.
func Merge(cfg *Config, overrides Config) error {
	if err := mergo.Merge(cfg, overrides, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config overrides: %w", err)
	}
	return nil
}

func findConfigFile(fs afero.Fs, file, dir string) (string, error) {
	if strings.TrimSpace(file) != "" {
		if ok, err := afero.Exists(fs, file); err != nil || !ok {
			return "", fmt.Errorf("%w: %s not found", ErrConfigFileInvalid, file)
		}
		return file, nil
	}
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate, nil
		}
	}
	return "", nil
}

func readConfigFile(fs afero.Fs, file string) (map[string]any, error) {
	raw, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", file, err)
	}
	data := map[string]any{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return data, nil
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigFileInvalid, file, err)
	}
	return data, nil
}

// transformEnv maps MDEXPAND_SYNTAX_KEYWORD_PREFIX to syntax.keyword_prefix
// and splits list values on commas.
func transformEnv(key, value string) (string, any) {
	name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	if len(parts) == 0 {
		return "", nil
	}

	path := strings.Join(parts, "_")
	if _, ok := sections[parts[0]]; ok && len(parts) > 1 {
		path = parts[0] + "." + strings.Join(parts[1:], "_")
	}

	if _, ok := listKeys[path]; ok {
		var items []any
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return path, items
	}
	return path, value
}

// rawMap is a koanf.Provider adapter for decoded config file data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("rawMap: ReadBytes not supported")
}
