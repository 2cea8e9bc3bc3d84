package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/finvia/reportd/pkg/api"
	"github.com/finvia/reportd/pkg/audit"
	"github.com/finvia/reportd/pkg/authz"
	"github.com/finvia/reportd/pkg/config"
	"github.com/finvia/reportd/pkg/finance"
	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/reports"
	"github.com/finvia/reportd/pkg/storage"
)

func main() {
	port := flag.String("port", "", "Port to listen on (overrides REPORTD_PORT)")
	healthPort := flag.String("health-port", "", "Health/metrics port (overrides REPORTD_HEALTH_PORT)")
	dbDriver := flag.String("db-driver", "", "Database driver: postgres or sqlite3 (overrides REPORTD_DB_DRIVER)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (overrides REPORTD_DB_DSN)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "reportd: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *healthPort != "" {
		cfg.Server.HealthPort = *healthPort
	}
	if *dbDriver != "" {
		cfg.Storage.Driver = *dbDriver
	}
	if *dbDSN != "" {
		cfg.Storage.DSN = *dbDSN
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("reportd exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	db, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db, cfg.Storage.Driver); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.WithField("driver", cfg.Storage.Driver).Info("database ready")

	var metrics *observability.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	var otelProviders *observability.OTelProviders
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(ctx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			return fmt.Errorf("init opentelemetry: %w", err)
		}
	}

	// Users and permissions start from the seed accounts; a saved snapshot
	// replaces them when persistence is on.
	authzSvc := authz.NewService(authz.DefaultSeed())
	var snapStore authz.SnapshotStore
	if cfg.Auth.SnapshotEnabled {
		switch cfg.Auth.SnapshotBackend {
		case config.SnapshotBackendS3:
			snapStore, err = storage.NewS3SnapshotStore(ctx, cfg.S3)
			if err != nil {
				return fmt.Errorf("init s3 snapshot store: %w", err)
			}
			logger.WithField("bucket", cfg.S3.Bucket).Info("using s3 snapshot backend")
		default:
			snapStore = storage.NewSnapshotStore(db, cfg.Storage.Driver)
		}

		snap, err := snapStore.Load(ctx)
		if err != nil {
			return fmt.Errorf("load authz snapshot: %w", err)
		}
		if snap != nil {
			if err := authzSvc.Restore(snap); err != nil {
				return fmt.Errorf("restore authz snapshot: %w", err)
			}
			logger.WithField("users", len(snap.Users)).Info("authz state restored")
		} else {
			logger.Info("no authz snapshot found, using seed accounts")
		}
	}

	financeSvc := finance.NewService(finance.NewRepo(db, cfg.Storage.Driver, metrics))
	reportsSvc := reports.NewService(
		reports.NewRepo(db, cfg.Storage.Driver, metrics),
		cfg.Reports.CacheSize, cfg.Reports.CacheTTL, metrics)

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		recorder = audit.NewDBRecorder(db, cfg.Storage.Driver)
	}

	apiServer := api.NewServer(api.Options{
		Logger:       logger,
		Metrics:      metrics,
		Authz:        authzSvc,
		Finance:      financeSvc,
		Reports:      reportsSvc,
		Audit:        recorder,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		EnableOTel:   cfg.Observability.OTelEnabled,
	})

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}

	apiSrv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthSrv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	scheduler := cron.New()
	if metrics != nil {
		if _, err := scheduler.AddFunc("@every 15s", func() {
			metrics.UsersTotal.Set(float64(authzSvc.UserCount()))
			metrics.ActiveSessionsTotal.Set(float64(authzSvc.SessionCount()))
		}); err != nil {
			return fmt.Errorf("schedule gauge refresh: %w", err)
		}
	}
	if cfg.Auth.SnapshotEnabled {
		schedule := fmt.Sprintf("@every %s", cfg.Auth.SnapshotInterval)
		if _, err := scheduler.AddFunc(schedule, func() {
			if err := snapStore.Save(context.Background(), authzSvc.Snapshot()); err != nil {
				logger.WithError(err).Error("periodic authz snapshot failed")
			}
		}); err != nil {
			return fmt.Errorf("schedule snapshot save: %w", err)
		}
	}
	scheduler.Start()

	sm := observability.NewShutdownManager(logger, apiSrv, cfg.Server.ShutdownTimeout)
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthSrv.Shutdown(ctx)
	})
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		<-scheduler.Stop().Done()
		return nil
	})
	if cfg.Auth.SnapshotEnabled {
		sm.RegisterShutdownFunc(func(ctx context.Context) error {
			return snapStore.Save(ctx, authzSvc.Snapshot())
		})
	}
	if otelProviders != nil {
		sm.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiSrv.Addr).Info("api server listening")
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthSrv.Addr).Info("health server listening")
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(sm.WaitForShutdown)

	return g.Wait()
}
