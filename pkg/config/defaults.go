package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8343"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Hierarchy defaults
	DefaultHierarchyFilePath = "./hierarchy.yaml"
	DefaultHierarchyWatch    = false

	// Cache defaults
	DefaultCacheMaxEntries    = 100000
	DefaultCacheSweepInterval = time.Minute

	// Evaluator defaults
	DefaultTrustedEnabled = true
	DefaultTrustedTimeout = 2 * time.Second
	DefaultSingleFlight   = true
	DefaultDelayMode      = "none"
	DefaultDelayRandomMax = 50 * time.Millisecond

	// Store defaults
	DefaultStoreBackend     = "memory"
	DefaultStoreSQLitePath  = "data/callisto.db"
	DefaultStoreBusyTimeout = 5 * time.Second

	// Maintenance defaults
	DefaultMaintenanceEnabled = true
	DefaultSweepSchedule      = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "callisto"
	DefaultMetricsSubsystem = ""
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in default values for any unset configuration field.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Hierarchy.FilePath == "" {
		cfg.Hierarchy.FilePath = DefaultHierarchyFilePath
	}

	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.SweepInterval == 0 {
		cfg.Cache.SweepInterval = DefaultCacheSweepInterval
	}

	if cfg.Evaluator.TrustedTimeout == 0 {
		cfg.Evaluator.TrustedTimeout = DefaultTrustedTimeout
	}
	if cfg.Evaluator.Delay.Mode == "" {
		cfg.Evaluator.Delay.Mode = DefaultDelayMode
	}
	if cfg.Evaluator.Delay.RandomMax == 0 {
		cfg.Evaluator.Delay.RandomMax = DefaultDelayRandomMax
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = DefaultStoreSQLitePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}

	if cfg.Maintenance.SweepSchedule == "" {
		cfg.Maintenance.SweepSchedule = DefaultSweepSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a configuration with every field set to its
// default value. Boolean fields that default to true are set here since
// ApplyDefaults cannot distinguish "false" from "unset".
func DefaultConfig() *Config {
	cfg := &Config{
		Evaluator: EvaluatorConfig{
			TrustedEnabled: DefaultTrustedEnabled,
			SingleFlight:   DefaultSingleFlight,
		},
		Maintenance: MaintenanceConfig{
			Enabled: DefaultMaintenanceEnabled,
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
