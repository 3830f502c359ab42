// Package config loads settings from ~/.config/reel/config.yaml, a .env
// file and REEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Store   StoreConfig   `mapstructure:"store"`
	Workers int           `mapstructure:"workers"` // Background pool size
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds remote catalog settings
type TMDBConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	ImageBaseURL      string  `mapstructure:"image_base_url"`
	Language          string  `mapstructure:"language"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
}

// StoreConfig selects the favorites store
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "bolt" or "sqlite"
	Path   string `mapstructure:"path"`   // Data directory; "" keeps everything in memory
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			Language:          "en-US",
			RequestsPerSecond: 20,
			TimeoutSeconds:    15,
		},
		Store: StoreConfig{
			Driver: "bolt",
			Path:   defaultDataPath(),
		},
		Workers: 4,
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "reel.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// ConfigDir returns where SaveConfig writes config.yaml
func ConfigDir() string {
	return defaultConfigPath()
}

// LoadConfig reads config.yaml from the config directory (or the working
// directory), after loading .env. REEL_* variables override the file,
// e.g. REEL_TMDB_API_KEY. TMDB_API_KEY is honored as a fallback key.
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.TMDB.APIKey == "" {
		cfg.TMDB.APIKey = os.Getenv("TMDB_API_KEY")
	}
	cfg.TMDB.APIKey = strings.TrimSpace(cfg.TMDB.APIKey)
	cfg.Store.Path = expandHome(cfg.Store.Path)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys
// that are absent from the file
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("tmdb.api_key", cfg.TMDB.APIKey)
	v.SetDefault("tmdb.base_url", cfg.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.language", cfg.TMDB.Language)
	v.SetDefault("tmdb.requests_per_second", cfg.TMDB.RequestsPerSecond)
	v.SetDefault("tmdb.timeout_seconds", cfg.TMDB.TimeoutSeconds)
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig saves the current configuration to the config directory
func SaveConfig(cfg *Config) error {
	return save(viper.GetViper(), cfg, defaultConfigPath())
}

func save(v *viper.Viper, cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("tmdb.requests_per_second", cfg.TMDB.RequestsPerSecond)
	v.Set("tmdb.timeout_seconds", cfg.TMDB.TimeoutSeconds)

	v.Set("store.driver", cfg.Store.Driver)
	v.Set("store.path", cfg.Store.Path)

	v.Set("workers", cfg.Workers)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// The file holds the API key
	return os.Chmod(configFile, 0600)
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
