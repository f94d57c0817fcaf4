// Package config loads bm settings from ~/.config/bm/config.yaml and the
// environment, and notifies listeners when the file changes.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BM"

// Settings holds the effective configuration.
type Settings struct {
	DBPath        string        `yaml:"db_path"`
	Debounce      time.Duration `yaml:"-"`
	ExpandAll     bool          `yaml:"expand_all"`
	ConfirmDelete bool          `yaml:"confirm_delete"`
	RecentFolders int           `yaml:"recent_folders"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
	AIModel       string        `yaml:"-"`
}

// fileSettings is the on-disk shape of Settings.
type fileSettings struct {
	Settings `yaml:",inline"`
	Debounce string     `yaml:"debounce"`
	AI       aiSettings `yaml:"ai"`
}

type aiSettings struct {
	Model string `yaml:"model"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	dir := configDir()
	return Settings{
		DBPath:        filepath.Join(dir, "bookmarks.db"),
		Debounce:      300 * time.Millisecond,
		ExpandAll:     false,
		ConfirmDelete: true,
		RecentFolders: 5,
		LogLevel:      "warn",
		LogFile:       filepath.Join(dir, "bm.log"),
		AIModel:       "claude-haiku-4-5-20251001",
	}
}

// Config wraps a viper instance owned by the caller.
type Config struct {
	v *viper.Viper
}

// Load reads config from path, or from the default location when path is empty.
// A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilePath()
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// Non-fatal: defaults still apply if the file can't be written
		_ = WriteDefault(path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultSettings()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("expand_all", d.ExpandAll)
	v.SetDefault("confirm_delete", d.ConfirmDelete)
	v.SetDefault("recent_folders", d.RecentFolders)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("ai.model", d.AIModel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{v: v}, nil
}

// Settings returns the current effective settings.
func (c *Config) Settings() Settings {
	s := Settings{
		DBPath:        expandHome(c.v.GetString("db_path")),
		Debounce:      c.v.GetDuration("debounce"),
		ExpandAll:     c.v.GetBool("expand_all"),
		ConfirmDelete: c.v.GetBool("confirm_delete"),
		RecentFolders: c.v.GetInt("recent_folders"),
		LogLevel:      c.v.GetString("log_level"),
		LogFile:       expandHome(c.v.GetString("log_file")),
		AIModel:       c.v.GetString("ai.model"),
	}

	if s.Debounce < 0 {
		s.Debounce = 0
	}
	if s.RecentFolders < 0 {
		s.RecentFolders = 0
	}
	return s
}

// File returns the config file in use.
func (c *Config) File() string {
	return c.v.ConfigFileUsed()
}

// Watch calls fn with fresh settings whenever the config file changes.
func (c *Config) Watch(fn func(Settings)) {
	c.v.OnConfigChange(func(fsnotify.Event) {
		fn(c.Settings())
	})
	c.v.WatchConfig()
}

// YAML renders settings in the config file format.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(fileSettings{
		Settings: s,
		Debounce: s.Debounce.String(),
		AI:       aiSettings{Model: s.AIModel},
	})
}

// WriteDefault writes the default config to path.
// Creates the directory if it doesn't exist.
func WriteDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := DefaultSettings().YAML()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bm/config.yaml
func DefaultConfigFilePath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "bm")
	}
	return filepath.Join(homeDir, ".config", "bm")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[2:])
}
