package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config holds everything labctl needs to reach the lab service and to log.
type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/labctl/config.toml"
	defaultAPIBaseURL      = "http://127.0.0.1:8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultRefreshInterval = time.Duration(0)
	defaultLogFile         = "~/.local/state/labctl/labctl.log"
	defaultLogLevel        = "info"

	envPrefix = "LABCTL_"
)

// dotenvPath is loaded before environment overrides are read. Variables
// already present in the environment win over the file.
var dotenvPath = ".env"

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:      defaultAPIBaseURL,
		RequestTimeout:  defaultRequestTimeout,
		RefreshInterval: defaultRefreshInterval,
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

type fileConfig struct {
	APIBaseURL      string `toml:"api_base_url"`
	RequestTimeout  string `toml:"request_timeout"`
	RefreshInterval string `toml:"refresh_interval"`
	LogFile         string `toml:"log_file"`
	LogLevel        string `toml:"log_level"`
}

// envConfig mirrors fileConfig. Nil fields were not set.
type envConfig struct {
	APIBaseURL      *string        `env:"API_BASE_URL"`
	RequestTimeout  *time.Duration `env:"REQUEST_TIMEOUT"`
	RefreshInterval *time.Duration `env:"REFRESH_INTERVAL"`
	LogFile         *string        `env:"LOG_FILE"`
	LogLevel        *string        `env:"LOG_LEVEL"`
}

// Load reads the TOML config at path (or the default location), then applies
// a .env file and LABCTL_* environment variables on top. A missing config
// file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.readFile(resolved); err != nil {
		return Config{}, err
	}
	if err := loadDotenv(dotenvPath); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.RefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: refresh_interval: %w", err)
		}
		c.RefreshInterval = d
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var raw envConfig
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if raw.APIBaseURL != nil && strings.TrimSpace(*raw.APIBaseURL) != "" {
		c.APIBaseURL = strings.TrimSpace(*raw.APIBaseURL)
	}
	if raw.RequestTimeout != nil {
		c.RequestTimeout = *raw.RequestTimeout
	}
	if raw.RefreshInterval != nil {
		c.RefreshInterval = *raw.RefreshInterval
	}
	if raw.LogFile != nil && strings.TrimSpace(*raw.LogFile) != "" {
		c.LogFile = mustExpand(*raw.LogFile)
	}
	if raw.LogLevel != nil && strings.TrimSpace(*raw.LogLevel) != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	return nil
}

// Override applies command-line values. Empty strings leave the field alone.
func (c *Config) Override(apiBaseURL, logLevel string) {
	if v := strings.TrimSpace(apiBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(logLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate rejects values that would break the client or the logger.
func (c Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("invalid config: refresh_interval must not be negative, got %s", c.RefreshInterval)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: log_level: %w", err)
	}
	return nil
}

// LogDir is the directory holding LogFile.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
