package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the island store.
type Config struct {
	DatabaseName     string        `env:"SKYCLAIMS_DB_NAME"`
	DatabaseLocation string        `env:"SKYCLAIMS_DB_LOCATION"`
	SchemaTimeout    time.Duration `env:"SKYCLAIMS_SCHEMA_TIMEOUT"`
	LogLevel         string        `env:"SKYCLAIMS_LOG_LEVEL"`
	LogFormat        string        `env:"SKYCLAIMS_LOG_FORMAT"`
}

// LoadDefaults populates c with the values the plugin ships with.
func (c *Config) LoadDefaults() {
	c.DatabaseName = "skyclaims"
	c.DatabaseLocation = filepath.Join("config", "skyclaims")
	c.SchemaTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// DatabasePath is the file the store opens: <location>/<name>.db.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DatabaseLocation, c.DatabaseName+".db")
}

// LoadConfig applies defaults, then JSON, environment and flags taken from
// args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseName == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.SchemaTimeout <= 0 {
		return fmt.Errorf("schema timeout must be positive, got %s", c.SchemaTimeout)
	}
	return nil
}
