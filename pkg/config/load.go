package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies CALLISTO_SECTION_FIELD environment variable overrides on top
// (e.g. CALLISTO_SERVER_LISTEN_ADDRESS). Environment variables always
// take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration invalid after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CALLISTO_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CALLISTO_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("CALLISTO_HIERARCHY_FILE_PATH"); val != "" {
		cfg.Hierarchy.FilePath = val
	}
	if val := os.Getenv("CALLISTO_HIERARCHY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Hierarchy.Watch = b
		}
	}

	if val := os.Getenv("CALLISTO_CACHE_MAX_ENTRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Cache.MaxEntries = i
		}
	}
	if val := os.Getenv("CALLISTO_CACHE_SWEEP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Cache.SweepInterval = d
		}
	}

	if val := os.Getenv("CALLISTO_EVALUATOR_TRUSTED_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evaluator.TrustedEnabled = b
		}
	}
	if val := os.Getenv("CALLISTO_EVALUATOR_TRUSTED_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Evaluator.TrustedTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_EVALUATOR_SINGLE_FLIGHT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Evaluator.SingleFlight = b
		}
	}

	if val := os.Getenv("CALLISTO_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("CALLISTO_STORE_SQLITE_PATH"); val != "" {
		cfg.Store.SQLitePath = val
	}

	if val := os.Getenv("CALLISTO_MAINTENANCE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Maintenance.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_MAINTENANCE_SWEEP_SCHEDULE"); val != "" {
		cfg.Maintenance.SweepSchedule = val
	}

	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
