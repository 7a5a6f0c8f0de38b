// Package config handles configuration loading for bondstore.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; every setting has a
// working default, so a configuration file is optional.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BONDSTORE_CONFIG environment variable
//  2. ./bondstore.yaml (current directory)
//  3. ~/.config/bondstore/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	store:
//	  path: "${BONDSTORE_PATH}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	store:
//	  settle_period: "3s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Store settings:
//
//	store:
//	  path: "/var/lib/bondstore/settings.conf"
//	  legacy_path: "/var/lib/bondstore/settings.xml"
//	  settle_period: "3s"
//	  gc_capacity: 256
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Store path presence
//   - Duration format and positivity
//   - Garbage collection capacity positivity
//   - Logging level and format values
package config
