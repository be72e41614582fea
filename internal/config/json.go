package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JsonConfig is the on-disk shape of the JSON config file. Empty fields keep
// whatever the earlier layers set.
type JsonConfig struct {
	DatabaseName     string `json:"database_name"`
	DatabaseLocation string `json:"database_location"`
	SchemaTimeout    string `json:"schema_timeout"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
}

func parseJson(cfg *Config, args []string) error {
	path := configFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if jc.DatabaseName != "" {
		cfg.DatabaseName = jc.DatabaseName
	}
	if jc.DatabaseLocation != "" {
		cfg.DatabaseLocation = jc.DatabaseLocation
	}
	if jc.SchemaTimeout != "" {
		d, err := time.ParseDuration(jc.SchemaTimeout)
		if err != nil {
			return fmt.Errorf("schema_timeout: %w", err)
		}
		cfg.SchemaTimeout = d
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	return nil
}
