// Package config loads clubdesk settings from a YAML file, a .env file and
// CLUB_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "CLUB"

// Config holds application settings
type Config struct {
	Storage       string        `mapstructure:"storage"`
	DBPath        string        `mapstructure:"db_path"`
	BusyTimeout   time.Duration `mapstructure:"busy_timeout"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	SeedDemo      bool          `mapstructure:"seed_demo"`
	AdminPassword string        `mapstructure:"admin_password"`
	TokenSecret   string        `mapstructure:"token_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// Options says where Load looks for settings
type Options struct {
	// ConfigFile is an explicit YAML file. It must exist when set.
	// Otherwise clubdesk.yaml is read from the working directory if present.
	ConfigFile string
	// EnvFile is loaded into the environment when present. Defaults to .env.
	EnvFile string
}

var defaults = map[string]any{
	"storage":        StorageSQLite,
	"db_path":        "clubdesk.db",
	"busy_timeout":   5 * time.Second,
	"bcrypt_cost":    0,
	"log_level":      "warn",
	"log_format":     "json",
	"seed_demo":      false,
	"admin_password": "",
	"token_secret":   "",
	"token_ttl":      12 * time.Hour,
}

// Load reads settings
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("clubdesk")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageSQLite, StorageMemory, c.Storage)
	}
	if c.Storage == StorageSQLite && c.DBPath == "" {
		return errors.New("db_path is required for sqlite storage")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.TokenTTL < 0 {
		return errors.New("token_ttl must not be negative")
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// NewLogger builds the application logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
