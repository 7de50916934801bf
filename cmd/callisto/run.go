package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"veridian-hq/callisto/pkg/cache"
	"veridian-hq/callisto/pkg/config"
	"veridian-hq/callisto/pkg/enclave"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/maintenance"
	"veridian-hq/callisto/pkg/server"
	"veridian-hq/callisto/pkg/service"
	"veridian-hq/callisto/pkg/store"
	"veridian-hq/callisto/pkg/telemetry/metrics"
	"veridian-hq/callisto/pkg/tiered"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto API server",
	Long: `Start the Callisto API server with the specified configuration.

The server loads the hierarchy file, brings up the cache tiers and the
trusted provider, and serves the evaluation and administration API.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8343

  # Validate config without starting server
  callisto run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger := setupLogging(&cfg.Telemetry.Logging)
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	var (
		registry    *prometheus.Registry
		cacheStats  *metrics.DecisionCacheMetrics
		evalMetrics *metrics.EvaluationMetrics
	)
	if cfg.Telemetry.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		cacheStats = metrics.NewDecisionCacheMetrics(&cfg.Telemetry.Metrics, registry)
		evalMetrics = metrics.NewEvaluationMetrics(&cfg.Telemetry.Metrics, registry)
	}

	// Cache tiers
	local := cache.New(cache.Config{
		Tier:          "local",
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval,
		Recorder:      cacheRecorder(cacheStats),
	})
	authoritative := cache.New(cache.Config{
		Tier:          "authoritative",
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval,
		Recorder:      cacheRecorder(cacheStats),
	})

	// Hierarchy
	policyRegistry := hierarchy.NewRegistry()
	source := hierarchy.NewFileSource(cfg.Hierarchy.FilePath, policyRegistry, logger)
	version, err := source.Load()
	if err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}
	slog.Info("hierarchy loaded", "path", cfg.Hierarchy.FilePath, "version", version)

	if cfg.Hierarchy.Watch {
		go func() {
			if err := source.Watch(ctx); err != nil {
				slog.Error("hierarchy watch failed", "error", err)
			}
		}()
	}

	// Trusted provider
	var trusted tiered.TrustedEvaluationAdapter
	if cfg.Evaluator.TrustedEnabled {
		provider := enclave.New(enclave.Config{Logger: logger})
		if err := provider.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize trusted provider: %w", err)
		}
		trusted = provider
		slog.Info("trusted provider initialized")
	}

	// Evaluator
	evaluator, err := tiered.New(tiered.Config{
		Local:          local,
		Authoritative:  authoritative,
		Registry:       policyRegistry,
		Trusted:        trusted,
		TrustedTimeout: cfg.Evaluator.TrustedTimeout,
		Delay:          delayProvider(&cfg.Evaluator.Delay),
		SingleFlight:   cfg.Evaluator.SingleFlight,
		Logger:         logger,
		Metrics:        evalMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	// Store
	var (
		backingStore store.Store
		vacuumer     maintenance.Vacuumer
	)
	switch cfg.Store.Backend {
	case "sqlite":
		sqliteStore, err := store.NewSQLiteStore(store.SQLiteConfig{
			Path:        cfg.Store.SQLitePath,
			BusyTimeout: cfg.Store.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		backingStore = sqliteStore
		vacuumer = sqliteStore
	case "memory", "":
		backingStore = store.NewMemoryStore()
	default:
		return fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
	slog.Info("store initialized", "backend", cfg.Store.Backend)

	// Service facade
	svc, err := service.New(service.Config{
		Store:     backingStore,
		Registry:  policyRegistry,
		Evaluator: evaluator,
		Caches:    []*cache.DecisionCache{local, authoritative},
		Trusted:   trusted,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	// Maintenance scheduler
	scheduler := maintenance.NewScheduler(&cfg.Maintenance, svc, vacuumer)
	if err := scheduler.Start(ctx); err != nil {
		slog.Warn("failed to start maintenance scheduler", "error", err)
	} else {
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			slog.Debug("maintenance scheduler started", "next_run", next.Format(time.RFC3339))
		}
	}

	// HTTP server, blocks until shutdown
	srv := server.New(&cfg.Server, &cfg.Telemetry.Metrics, svc, registry, logger)
	return srv.Start(ctx)
}

func setupLogging(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// cacheRecorder keeps the Recorder interface value nil when metrics are
// disabled. A typed nil pointer would pass the cache's nil check.
func cacheRecorder(m *metrics.DecisionCacheMetrics) cache.Recorder {
	if m == nil {
		return nil
	}
	return m
}

func delayProvider(cfg *config.DelayConfig) tiered.DelayProvider {
	switch cfg.Mode {
	case "fixed":
		return tiered.FixedDelay{D: cfg.Fixed}
	case "random":
		return tiered.RandomDelay{Max: cfg.RandomMax}
	default:
		return tiered.NoDelay{}
	}
}
