// Package config loads cmess settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFileNames is the ordered list of config file names to search for.
var configFileNames = []string{
	"cmess.yml",
	"cmess.yaml",
	".cmess.yml",
	".cmess.yaml",
}

// Config is the top-level configuration.
type Config struct {
	Macros   MacrosConfig   `yaml:"macros"`
	Output   OutputConfig   `yaml:"output"`
	Frontend FrontendConfig `yaml:"frontend"`
}

// MacrosConfig names the macros that replace the logical operators.
type MacrosConfig struct {
	And string `yaml:"and"`
	Or  string `yaml:"or"`
}

// OutputConfig controls the written file.
type OutputConfig struct {
	Suffix string `yaml:"suffix"`
	Header bool   `yaml:"header"`
}

// FrontendConfig holds parse settings.
type FrontendConfig struct {
	Language string   `yaml:"language"` // auto, c or c++
	Args     []string `yaml:"args"`     // prepended to the forwarded command-line arguments
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Macros:   MacrosConfig{And: "AND", Or: "OR"},
		Output:   OutputConfig{Suffix: ".mess", Header: true},
		Frontend: FrontendConfig{Language: "auto"},
	}
}

// Discover returns the path of the first config file found in dir, or ""
// if there is none.
func Discover(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the config file at configPath, or the one Discover finds in the
// working directory when configPath is empty. Without a file it returns
// DefaultConfig. Fields missing from the file keep their defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		configPath = Discover(wd)
	}

	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that the macro names are C identifiers, that the suffix
// starts with '.' and that the language is known.
func (c *Config) Validate() error {
	for key, name := range map[string]string{"macros.and": c.Macros.And, "macros.or": c.Macros.Or} {
		if !isIdentifier(name) {
			return fmt.Errorf("%w: %s %q is not a C identifier", ErrInvalid, key, name)
		}
	}
	if c.Macros.And == c.Macros.Or {
		return fmt.Errorf("%w: macros.and and macros.or are both %q", ErrInvalid, c.Macros.And)
	}
	if !strings.HasPrefix(c.Output.Suffix, ".") || strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("%w: output.suffix %q must start with '.' and name no directory", ErrInvalid, c.Output.Suffix)
	}
	switch c.Frontend.Language {
	case "", "auto", "c", "c++":
	default:
		return fmt.Errorf("%w: frontend.language %q (want auto, c or c++)", ErrInvalid, c.Frontend.Language)
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '_', 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z':
		case '0' <= ch && ch <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
