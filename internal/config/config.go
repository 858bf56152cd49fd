package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAPIURL         = "http://localhost:8089"
	defaultAPITimeout     = 10 * time.Second
	defaultSyncInterval   = 5 * time.Minute
	defaultMonitoringPort = 8080
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env        string           `yaml:"env" env-default:"local"` // Env is the current environment: local, development, production.
	API        APIConfig        `yaml:"api"`                     // API holds the employee backend connection settings
	Auth       AuthConfig       `yaml:"auth"`                    // Auth holds the bearer token source
	Sync       SyncConfig       `yaml:"sync"`                    // Sync holds the periodic refresh settings
	Monitoring MonitoringConfig `yaml:"monitoring"`              // Monitoring holds the metrics/health server settings
}

// APIConfig struct holds the configuration details for connecting to the employee API.
type APIConfig struct {
	URL     string        `yaml:"url"     env-default:"http://localhost:8089"` // URL is the API root in format `https://example.com`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`                   // Timeout bounds a single request
}

// AuthConfig struct holds where the bearer token comes from. TokenFile wins over Token.
type AuthConfig struct {
	Token     string `yaml:"token"`      // Token is a static bearer token
	TokenFile string `yaml:"token_file"` // TokenFile is re-read on every request
}

// SyncConfig struct holds the settings of the refresh loop.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval" env-default:"5m"` // Interval is the time after that caches are refreshed.
}

// MonitoringConfig struct holds the settings of the /metrics and /healthz server.
type MonitoringConfig struct {
	Port int `yaml:"port" env-default:"8080"`
}

// MustLoad loads the configuration from the YAML file named by CONFIG_PATH and panics on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the configuration from path. An empty path loads defaults and environment only.
// Environment variables prefixed with ATHENA_ override file values, e.g. ATHENA_API_URL.
func Load(path string) (*Config, error) {
	vpr := viper.New()

	vpr.SetDefault("env", "local")
	vpr.SetDefault("api.url", defaultAPIURL)
	vpr.SetDefault("api.timeout", defaultAPITimeout)
	vpr.SetDefault("auth.token", "")
	vpr.SetDefault("auth.token_file", "")
	vpr.SetDefault("sync.interval", defaultSyncInterval)
	vpr.SetDefault("monitoring.port", defaultMonitoringPort)

	vpr.SetEnvPrefix("athena")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()

	if path != "" {
		// check if file exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}

		vpr.SetConfigFile(path)
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env: vpr.GetString("env"),
		API: APIConfig{
			URL:     vpr.GetString("api.url"),
			Timeout: vpr.GetDuration("api.timeout"),
		},
		Auth: AuthConfig{
			Token:     vpr.GetString("auth.token"),
			TokenFile: vpr.GetString("auth.token_file"),
		},
		Sync: SyncConfig{
			Interval: vpr.GetDuration("sync.interval"),
		},
		Monitoring: MonitoringConfig{
			Port: vpr.GetInt("monitoring.port"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("%w: api.url must be an http(s) URL, got %q", ErrInvalidConfig, c.API.URL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", ErrInvalidConfig)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("%w: sync.interval must be positive", ErrInvalidConfig)
	}

	return nil
}
