package config

import "time"

// Config is the root configuration structure for the Callisto decision
// runtime. It covers the HTTP server, the hierarchy source, decision
// caching, the tiered evaluator, the subject store, maintenance jobs and
// telemetry.
type Config struct {
	// Server contains the HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Hierarchy contains configuration for the policy hierarchy source.
	Hierarchy HierarchyConfig `yaml:"hierarchy"`

	// Cache contains the per-tier decision cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// Evaluator contains tiered evaluation configuration.
	Evaluator EvaluatorConfig `yaml:"evaluator"`

	// Store contains the subject/requester store configuration.
	Store StoreConfig `yaml:"store"`

	// Maintenance contains scheduled maintenance configuration.
	Maintenance MaintenanceConfig `yaml:"maintenance"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8343"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// HierarchyConfig contains configuration for the policy hierarchy source.
type HierarchyConfig struct {
	// FilePath is the YAML file defining the hierarchy.
	// Default: "./hierarchy.yaml"
	FilePath string `yaml:"file_path"`

	// Watch enables hot reload when the hierarchy file changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// CacheConfig contains the decision cache configuration, applied to each
// tier's cache instance.
type CacheConfig struct {
	// MaxEntries caps each tier's cache size before LRU eviction.
	// Default: 100000
	MaxEntries int `yaml:"max_entries"`

	// SweepInterval is how often expired entries are physically removed.
	// Default: 1m
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// EvaluatorConfig contains tiered evaluation configuration.
type EvaluatorConfig struct {
	// TrustedEnabled registers the in-process trusted evaluation provider
	// on the local tier. Default: true
	TrustedEnabled bool `yaml:"trusted_enabled"`

	// TrustedTimeout bounds a single trusted evaluation call. The call is
	// not interruptible mid-flight; on timeout its result is discarded and
	// evaluation falls through to the authoritative tier. Default: 2s
	TrustedTimeout time.Duration `yaml:"trusted_timeout"`

	// SingleFlight coalesces concurrent evaluations of the same
	// fingerprint. Purely an efficiency measure. Default: true
	SingleFlight bool `yaml:"single_flight"`

	// Delay configures simulated per-hop network latency.
	Delay DelayConfig `yaml:"delay"`
}

// DelayConfig configures the simulated hop latency provider.
type DelayConfig struct {
	// Mode selects the provider: "none", "fixed", or "random".
	// Default: "none"
	Mode string `yaml:"mode"`

	// Fixed is the delay per hop in "fixed" mode. Default: 0
	Fixed time.Duration `yaml:"fixed"`

	// RandomMax bounds the uniform random delay per hop in "random" mode.
	// Default: 50ms
	RandomMax time.Duration `yaml:"random_max"`
}

// StoreConfig contains the subject/requester store configuration.
type StoreConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/callisto.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long sqlite waits for locks. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MaintenanceConfig contains scheduled maintenance configuration.
type MaintenanceConfig struct {
	// Enabled turns the cron scheduler on. Default: true
	Enabled bool `yaml:"enabled"`

	// SweepSchedule is a cron expression for the deep cache sweep across
	// all tiers. Default: "0 3 * * *"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled turns metrics collection and the /metrics endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label. Default: ""
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path serving metrics. Default: "/metrics"
	Path string `yaml:"path"`
}
