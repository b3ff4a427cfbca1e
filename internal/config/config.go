// Package config handles the XDG configuration directory, .env files and
// environment settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "TASKBOARD"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvFile is the dotenv filename looked up in the working and config dirs.
	EnvFile = ".env"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

const (
	// DefaultAPIURL is the task collection served by the reference backend.
	DefaultAPIURL = "http://localhost:8080/api/tareas"

	// DefaultAddr is the listen address of `taskboard serve`.
	DefaultAddr = "localhost:3000"

	// DefaultTaskList is the Google Tasks list used by the googletasks backend.
	DefaultTaskList = "@default"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the task service implementation.
	Backend string

	// APIURL is the REST task collection URL.
	APIURL string

	// APIToken is an optional bearer token for the REST backend.
	APIToken string

	// TaskList is the Google Tasks list ID.
	TaskList string

	// Addr is the web server listen address.
	Addr string

	// LogLevel and LogFormat configure the logger.
	LogLevel  string
	LogFormat string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
// Settings take their defaults; use Load to read the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Backend:  BackendREST,
		APIURL:   DefaultAPIURL,
		TaskList: DefaultTaskList,
		Addr:     DefaultAddr,
	}, nil
}

// Load creates a Config like New, then applies .env files and TASKBOARD_*
// environment variables. Variables already set in the environment win over
// .env entries; ./.env wins over the one in the config dir.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	for _, path := range []string{EnvFile, cfg.EnvPath()} {
		if err := loadEnvFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}

// applyEnv copies TASKBOARD_* variables into c. Values are checked by
// Validate once command-line overrides are in place.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + "_" + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get("BACKEND"); ok {
		c.Backend = strings.ToLower(v)
	}
	if v, ok := get("API_URL"); ok {
		c.APIURL = v
	}
	if v, ok := get("API_TOKEN"); ok {
		c.APIToken = v
	}
	if v, ok := get("TASKLIST"); ok {
		c.TaskList = v
	}
	if v, ok := get("ADDR"); ok {
		c.Addr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
}

// Validate checks settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendREST, BackendGoogleTasks:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendREST, BackendGoogleTasks)
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// EnvPath returns the path to the .env file in the config directory.
func (c *Config) EnvPath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
