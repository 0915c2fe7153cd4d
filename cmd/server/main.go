package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dastarkhan/internal/api"
	"dastarkhan/internal/audit"
	"dastarkhan/internal/availability"
	"dastarkhan/internal/cache"
	"dastarkhan/internal/config"
	"dastarkhan/internal/db"
	"dastarkhan/internal/events"
	"dastarkhan/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("DASTARKHAN_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}
	viewCache := cache.New(rdb, cfg.CacheTTL())

	bus := events.NewEventBus()
	invalidate := func(event events.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		viewCache.InvalidateAvailability(ctx, event.PublicID)
		return nil
	}
	logTransition := func(event events.Event) error {
		logger.Info().
			Str("event", event.Type).
			Int64("store_id", event.StoreID).
			Str("origin", string(event.Origin)).
			Msg("store status transition")
		return nil
	}
	bus.Subscribe(events.TypeStoreOpened, invalidate)
	bus.Subscribe(events.TypeStoreClosed, invalidate)
	bus.Subscribe(events.TypeStoreOpened, logTransition)
	bus.Subscribe(events.TypeStoreClosed, logTransition)

	engine := availability.NewEngine(database, database, database, database, &logger)
	engine.UseEventBus(bus)

	var auditSvc *audit.Service
	if cfg.Audit.Enabled {
		auditSvc = audit.NewService(&audit.Config{
			ReportDir:    cfg.Audit.ReportDir,
			LogRetention: cfg.LogRetention(),
		}, database, audit.NewExcelizeWriter, database, logger)
		auditSvc.Start()
		defer auditSvc.Stop()
	}

	server := api.NewServer(engine, viewCache, auditSvc, database, logger, api.Options{
		WriteRatePerSec: cfg.HTTP.WriteRatePerSec,
		WriteBurst:      cfg.HTTP.WriteBurst,
	})
	if rdb != nil {
		server.UseRedis(rdb)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Enabled {
		backups := db.NewBackupService(cfg.Database.Path, db.BackupConfig{
			Enabled:       true,
			Interval:      cfg.BackupInterval(),
			Path:          cfg.Backup.Path,
			RetentionDays: cfg.Backup.RetentionDays,
		}, logger)
		go backups.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.HTTP.Port).Msg("availability server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
