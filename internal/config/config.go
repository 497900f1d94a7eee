// Package config loads CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAPIURL      = "CDTIRE_API_URL"
	EnvProtocol    = "CDTIRE_PROTOCOL"
	EnvProject     = "CDTIRE_PROJECT"
	EnvTokenFile   = "CDTIRE_TOKEN_FILE"
	EnvHTTPTimeout = "CDTIRE_HTTP_TIMEOUT"
	EnvLogLevel    = "CDTIRE_LOG_LEVEL"
	EnvDatabaseURL = "CDTIRE_DATABASE_URL"
)

// Config holds the resolved settings.
type Config struct {
	API      APIConfig
	Project  ProjectConfig
	LogLevel slog.Level
	// DatabaseURL enables the run store when set.
	DatabaseURL string
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL   string
	TokenFile string
	Timeout   time.Duration
}

// ProjectConfig names the project a submission belongs to.
type ProjectConfig struct {
	Name     string
	Protocol string
}

// Error reports an environment variable with an unusable value.
type Error struct {
	Key   string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: invalid %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads .env files (if present) and then the environment. Variables
// already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	api, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if name := getEnvOrDefault(EnvLogLevel, "info"); level.UnmarshalText([]byte(name)) != nil {
		return nil, &Error{Key: EnvLogLevel, Value: name, Err: errors.New("unknown log level")}
	}

	return &Config{
		API: *api,
		Project: ProjectConfig{
			Name:     getEnvOrDefault(EnvProject, "DefaultProject"),
			Protocol: getEnvOrDefault(EnvProtocol, "CDTire"),
		},
		LogLevel:    level,
		DatabaseURL: os.Getenv(EnvDatabaseURL),
	}, nil
}

func loadAPIConfig() (*APIConfig, error) {
	base := getEnvOrDefault(EnvAPIURL, "http://localhost:3000")
	u, err := url.Parse(base)
	if err != nil {
		return nil, &Error{Key: EnvAPIURL, Value: base, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{Key: EnvAPIURL, Value: base, Err: errors.New("scheme must be http or https")}
	}

	timeout, err := getEnvDurationOrDefault(EnvHTTPTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &APIConfig{
		BaseURL:   base,
		TokenFile: getEnvOrDefault(EnvTokenFile, defaultTokenFile()),
		Timeout:   timeout,
	}, nil
}

// defaultTokenFile is cdtire/token under the user config directory, or ""
// when there is none.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cdtire", "token")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &Error{Key: key, Value: value, Err: err}
	}
	if d <= 0 {
		return 0, &Error{Key: key, Value: value, Err: errors.New("must be positive")}
	}
	return d, nil
}
