// Command aeonsyncd runs the offline-first operation queue and sync
// subsystem as a standalone daemon: it wires the encrypted queue (C3),
// conflict resolver (C4), and sync coordinator (C5) together behind
// the admin HTTP surface, and drives them against an in-process demo
// transport (see transport.go) since the real transport and mutation
// producers are external collaborators this module does not own.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aeonsync/core/internal/adminapi"
	"github.com/aeonsync/core/internal/logger"
	"github.com/aeonsync/core/internal/telemetry"
	"github.com/aeonsync/core/pkg/config"
	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/conflictstore"
	"github.com/aeonsync/core/pkg/crypto"
	"github.com/aeonsync/core/pkg/eventbus"
	"github.com/aeonsync/core/pkg/metrics"
	"github.com/aeonsync/core/pkg/operation"
	"github.com/aeonsync/core/pkg/queue"
	"github.com/aeonsync/core/pkg/sync"

	// Registers Prometheus constructors for pkg/metrics via init().
	_ "github.com/aeonsync/core/pkg/metrics/prometheus"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/aeonsync/config.yaml)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aeonsyncd %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "aeonsyncd",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "aeonsyncd",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		log.Fatalf("failed to initialize profiling: %v", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	bus := eventbus.New()
	subscribeEventLogging(bus)

	store, err := config.CreateStorageAdapter(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create storage adapter: %v", err)
	}

	keys := crypto.NewKeyCache()
	q := queue.New(cfg.Queue.ToQueueConfig(), bus, keys, store)
	q.SetMetrics(metrics.NewQueueMetrics())
	if err := q.RestoreFromAdapter(ctx); err != nil {
		logger.Warn("failed to restore queue snapshot", "error", err)
	}
	q.Start(ctx)
	defer q.Stop()

	resolver := conflict.New(cfg.Resolver.ToResolverConfig(), bus)
	resolver.SetMetrics(metrics.NewConflictMetrics())

	var cstore *conflictstore.Store
	if cfg.Storage.Conflicts.DSN != "" {
		cstore, err = conflictstore.New(ctx, conflictstore.Config{
			Driver: conflictstore.Driver(cfg.Storage.Conflicts.Driver),
			DSN:    cfg.Storage.Conflicts.DSN,
		})
		if err != nil {
			logger.Warn("failed to open conflict store, continuing without durable retention", "error", err)
		} else {
			defer func() {
				if err := cstore.Close(); err != nil {
					logger.Warn("failed to close conflict store", "error", err)
				}
			}()
		}
	}
	mirrorUnresolvedConflicts(bus, cstore)

	coordinator := sync.New(cfg.Coordinator.ToSyncConfig(), bus)
	coordinator.SetMetrics(metrics.NewSyncMetrics())
	coordinator.SetNetworkState(operation.NetworkOnline)

	transport := newLoopbackTransport()
	driver := newDriver(q, coordinator, resolver, transport, cfg.Coordinator.ToSyncConfig())
	driver.Start(ctx)
	defer driver.Stop()

	var adminSrv *adminapi.Server
	if cfg.AdminAPI.Enabled {
		adminSrv = adminapi.NewServer(cfg.AdminAPI.Port, adminapi.Deps{
			Resolver:    resolver,
			Queue:       q,
			Coordinator: coordinator,
			Registry:    metrics.GetRegistry(),
			JWTSecret:   cfg.AdminAPI.JWTSecret,
		})
		go func() {
			if err := adminSrv.Start(ctx); err != nil {
				logger.Error("admin api server error", "error", err)
			}
		}()
	}

	logger.Info("aeonsyncd started", "version", version, "storage_backend", cfg.Storage.Backend)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)
	logger.Info("shutdown signal received, stopping")
	cancel()
}
