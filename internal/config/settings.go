package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into Settings
const EnvPrefix = "CASERUN_"

// Settings holds the harness runtime options.
// Precedence: CLI flags > environment variables > settings file > defaults
type Settings struct {
	Env         string        `koanf:"env"`
	ConfigFiles []string      `koanf:"config_files"`
	Data        string        `koanf:"data"`
	Encoding    string        `koanf:"encoding"`
	Token       string        `koanf:"token"`
	Timeout     time.Duration `koanf:"timeout"`
	Rate        float64       `koanf:"rate"`
	LogLevel    string        `koanf:"log_level"`
	LogFormat   string        `koanf:"log_format"`
	NoColor     bool          `koanf:"no_color"`
}

// DefaultSettings returns Settings with default values
func DefaultSettings() Settings {
	return Settings{
		ConfigFiles: []string{
			"conf/env.yaml",
			"conf/interface_info.yaml",
			"conf/config.ini",
		},
		Encoding:  "utf-8",
		Timeout:   30 * time.Second,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadSettings resolves Settings from the optional YAML file at path, then
// CASERUN_* environment variables, then overrides (keyed by koanf tag).
func LoadSettings(path string, overrides map[string]any) (Settings, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
				return Settings{}, &ParseError{Path: path, Format: "yaml", Err: err}
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("stat settings file: %w", err)
		}
	}

	// CASERUN_LOG_LEVEL -> log_level
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Settings{}, fmt.Errorf("load environment settings: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return Settings{}, fmt.Errorf("apply setting %s: %w", key, err)
		}
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	settings.applyDefaults()

	if settings.Timeout <= 0 {
		return Settings{}, fmt.Errorf("timeout must be positive, got %s", settings.Timeout)
	}
	if settings.Rate < 0 {
		return Settings{}, fmt.Errorf("rate cannot be negative")
	}

	return settings, nil
}

// applyDefaults fills every unset field from DefaultSettings
func (s *Settings) applyDefaults() {
	defaults := DefaultSettings()

	if len(s.ConfigFiles) == 0 {
		s.ConfigFiles = defaults.ConfigFiles
	}
	if s.Encoding == "" {
		s.Encoding = defaults.Encoding
	}
	if s.Timeout == 0 {
		s.Timeout = defaults.Timeout
	}
	if s.LogLevel == "" {
		s.LogLevel = defaults.LogLevel
	}
	if s.LogFormat == "" {
		s.LogFormat = defaults.LogFormat
	}
}
