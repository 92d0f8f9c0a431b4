// Package config loads settings from a YAML file, an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/and161185/policydesk/internal/apiclient"
)

// Config holds settings shared by the CLI and the portal.
type Config struct {
	API      API    `yaml:"api"`
	StateDir string `yaml:"state_dir"`
	Portal   Portal `yaml:"portal"`
	Log      Log    `yaml:"log"`
}

// API describes the backend.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // per command/page deadline, 0 disables
}

// Portal configures the web front end.
type Portal struct {
	Addr          string `yaml:"addr"`
	CookieSecret  string `yaml:"cookie_secret"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

// Log configures zap.
type Log struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		API:    API{BaseURL: apiclient.DefaultBaseURL, Timeout: 30 * time.Second},
		Portal: Portal{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path skips the file; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile exports variables from a .env file without overriding ones already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"POLICYDESK_API_URL":       &c.API.BaseURL,
		"POLICYDESK_STATE_DIR":     &c.StateDir,
		"POLICYDESK_PORTAL_ADDR":   &c.Portal.Addr,
		"POLICYDESK_COOKIE_SECRET": &c.Portal.CookieSecret,
		"POLICYDESK_LOG_LEVEL":     &c.Log.Level,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("POLICYDESK_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POLICYDESK_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("POLICYDESK_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POLICYDESK_SECURE_COOKIES: %w", err)
		}
		c.Portal.SecureCookies = b
	}
	return nil
}

// Build returns a production zap logger (development when Dev is set) at the configured level.
func (l Log) Build() (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if l.Level != "" {
		if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", l.Level, err)
		}
	}
	zc := zap.NewProductionConfig()
	if l.Dev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
