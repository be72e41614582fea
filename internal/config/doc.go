// Package config loads the settings the island store consumes: where the
// database file lives and how the process logs.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by -c or -config.
//  3. Environment variables (SKYCLAIMS_*), parsed with caarlos0/env.
//  4. Command-line flags, which override everything before them.
//
// Supported flags
//
//	-n string   database file name, without the .db suffix
//	-l string   directory holding the database file
//	-t int      schema statement timeout (seconds)
//	-v string   log level: debug, info, warn, error
//
// # JSON schema
//
//	{
//	  "database_name": "skyclaims",
//	  "database_location": "./config/skyclaims",
//	  "schema_timeout": "30s",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
