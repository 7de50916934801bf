package config

import (
	"fmt"
	"strings"
)

// Validate checks a configuration for inconsistencies. It returns an error
// describing every problem found, or nil when the configuration is usable.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address cannot be empty")
	}
	if cfg.Server.MaxHeaderBytes < 0 {
		problems = append(problems, "server.max_header_bytes cannot be negative")
	}

	if cfg.Hierarchy.FilePath == "" {
		problems = append(problems, "hierarchy.file_path cannot be empty")
	}

	if cfg.Cache.MaxEntries < 0 && cfg.Cache.MaxEntries != -1 {
		problems = append(problems, "cache.max_entries must be positive, or -1 for unlimited")
	}
	if cfg.Cache.SweepInterval < 0 {
		problems = append(problems, "cache.sweep_interval cannot be negative")
	}

	if cfg.Evaluator.TrustedTimeout <= 0 {
		problems = append(problems, "evaluator.trusted_timeout must be positive")
	}
	switch cfg.Evaluator.Delay.Mode {
	case "none", "fixed", "random":
	default:
		problems = append(problems, fmt.Sprintf("evaluator.delay.mode must be one of none, fixed, random (got %q)", cfg.Evaluator.Delay.Mode))
	}
	if cfg.Evaluator.Delay.Fixed < 0 {
		problems = append(problems, "evaluator.delay.fixed cannot be negative")
	}
	if cfg.Evaluator.Delay.RandomMax < 0 {
		problems = append(problems, "evaluator.delay.random_max cannot be negative")
	}

	switch cfg.Store.Backend {
	case "memory":
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path cannot be empty for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be memory or sqlite (got %q)", cfg.Store.Backend))
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.level must be one of debug, info, warn, error (got %q)", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.logging.format must be json or text (got %q)", cfg.Telemetry.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
