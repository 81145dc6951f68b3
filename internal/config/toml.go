// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Backend   BackendConfig   `toml:"backend"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Log       LogConfig       `toml:"log"`
	History   HistoryConfig   `toml:"history"`
	Templates TemplatesConfig `toml:"templates"`
}

// BackendConfig maps backend connection settings.
type BackendConfig struct {
	URL     *string       `toml:"url"`
	Timeout *string       `toml:"timeout"`
	Breaker BreakerConfig `toml:"breaker"`
}

// BreakerConfig maps circuit breaker settings.
type BreakerConfig struct {
	Enabled  *bool   `toml:"enabled"`
	Failures *int    `toml:"failures"`
	Cooldown *string `toml:"cooldown"`
}

// DefaultsConfig maps the initial form selections.
type DefaultsConfig struct {
	Level *string `toml:"level"`
	Lang  *string `toml:"lang"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	File  *string `toml:"file"`
	Level *string `toml:"level"`
}

// HistoryConfig maps attempt history settings.
type HistoryConfig struct {
	Path    *string `toml:"path"`
	Enabled *bool   `toml:"enabled"`
}

// TemplatesConfig maps starter template overrides.
type TemplatesConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `codetutor config` when no file exists yet.
const Template = `# codetutor configuration

[backend]
# url = "http://localhost:8000"
# timeout = "120s"

[backend.breaker]
# enabled = false
# failures = 3
# cooldown = "30s"

[defaults]
# level = "newbie"
# lang = "python"

[log]
# file = ""
# level = "info"

[history]
# enabled = true
# path = ""

[templates]
# dir = ""
`
