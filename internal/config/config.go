// Package config loads termchat settings from a TOML file in the XDG
// config directory, merged over defaults. Command-line flags override
// config values at the call site.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every setting, with defaults guaranteed present.
type Config struct {
	DefaultModel     string        `mapstructure:"default_model"`
	SystemPrompt     string        `mapstructure:"system_prompt"`
	OllamaURL        string        `mapstructure:"ollama_url"`
	ConversationsDir string        `mapstructure:"conversations_dir"`
	AutoSave         bool          `mapstructure:"auto_save"`
	Options          OptionsConfig `mapstructure:"options"`
}

// OptionsConfig mirrors the model options. Nil means the option is unset
// and the server default applies; it is never conflated with zero.
type OptionsConfig struct {
	Seed        *int     `mapstructure:"seed"`
	Temperature *float64 `mapstructure:"temperature"`
	TopP        *float64 `mapstructure:"top_p"`
	NumCtx      *int     `mapstructure:"num_ctx"`
}

// Load reads config.toml from the XDG config directory. A missing file
// is not an error; defaults apply.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("config dir: %w", err)
	}
	return LoadFrom(dir)
}

// LoadFrom reads config.toml from the given directory.
func LoadFrom(dir string) (*Config, error) {
	dataDir, err := DataDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetDefault("default_model", "")
	v.SetDefault("system_prompt", "")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("conversations_dir", filepath.Join(dataDir, "conversations"))
	v.SetDefault("auto_save", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Dir returns the XDG config directory for termchat.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termchat"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "termchat"), nil
}

// DataDir returns the XDG data directory for termchat (history, usage
// log, default conversations directory).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "termchat"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "termchat"), nil
}

// HistoryPath is the readline history file location.
func HistoryPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history"), nil
}

// UsageDBPath is the usage log database location.
func UsageDBPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "usage.db"), nil
}

// Path returns the config file location, whether or not it exists.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
