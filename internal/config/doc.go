// Package config loads runtime configuration for the pharmdesk shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional file selected with -c or -config. A .toml extension selects
//     TOML, anything else is read as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
//	{
//	  "api_origin": "https://api.example.com",
//	  "prefs_path": "pharmdesk.db",
//	  "log_path": "pharmdesk.log",
//	  "log_level": "info",
//	  "toast_duration": "2.6s",
//	  "brand": "pharmdesk"
//	}
//
// The same keys are used in TOML files.
//
// Validate must pass before boot; an empty or relative origin is a
// configuration error and the program exits without drawing the UI.
package config
