// Package config defines the YAML configuration tree for the Callisto
// decision runtime and utilities to load, default and validate it.
//
// # Usage
//
//	cfg, err := config.LoadConfig("config.yaml")
//
//	// or with CALLISTO_* environment variable overrides:
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Loading applies defaults for every unset field and validates the result,
// so a successfully loaded configuration is always usable as-is.
package config
