package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gomarketplace_ingest/config"
	"gomarketplace_ingest/internal/catalog/business"
	"gomarketplace_ingest/internal/catalog/pkg/clients"
	"gomarketplace_ingest/internal/catalog/storage"
	"gomarketplace_ingest/metrics"
	"gomarketplace_ingest/migrations/infrastructure"
	"gomarketplace_ingest/pkg/business/service"
	"gomarketplace_ingest/pkg/dbconnect"
	"gomarketplace_ingest/pkg/dbconnect/migration"
	"gomarketplace_ingest/pkg/logger"
	"gomarketplace_ingest/pkg/middleware"
)

type IngestServer struct {
	dbconnect.Database
	cfg *config.AppConfig
	log logger.Logger
}

func NewIngestServer(db dbconnect.Database, cfg *config.AppConfig, log logger.Logger) *IngestServer {
	return &IngestServer{Database: db, cfg: cfg, log: log}
}

// Run connects, applies the schema bootstrap and runs ingestion until ctx ends. With a zero run interval
// the catalog is walked once.
func (s *IngestServer) Run(ctx context.Context) error {
	db, err := s.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer s.Close()

	if err := migration.Apply(ctx, db, infrastructure.CatalogMigrations(s.log.WithPrefix("[Migrations]"))...); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	s.log.Log("Catalog migrations applied successfully!")

	if s.cfg.Metrics.Address != "" {
		stopMetrics := s.serveMetrics(ctx)
		defer stopMetrics()
	}

	client := clients.NewCatalogClient(s.cfg.Catalog, s.log.WithPrefix("[CatalogClient]"))
	writer := business.NewEntityWriter(
		storage.NewCatalogRepository(db),
		client,
		service.NewTextService(),
		s.log.WithPrefix("[EntityWriter]"),
	)
	checkpoints := storage.NewCheckpointRepository(db)

	for {
		loop := business.NewIngestLoop(client, writer, checkpoints, s.cfg.Ingest.RetryDelay, s.log.WithPrefix("[IngestLoop]"))
		state := loop.Run(ctx)
		s.log.Log("Ingestion run finished in state %s", state)

		if state == business.StateStopped || s.cfg.Ingest.RunInterval <= 0 {
			return nil
		}

		s.log.Log("Next run in %v", s.cfg.Ingest.RunInterval)
		timer := time.NewTimer(s.cfg.Ingest.RunInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *IngestServer) serveMetrics(ctx context.Context) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.PrometheusMiddleware(metrics.MetricsHandler()))
	mux.Handle("/healthz", middleware.PrometheusMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})))

	srv := &http.Server{Addr: s.cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		s.log.Log("Metrics listening on %s", s.cfg.Metrics.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Metrics server failed: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("Metrics server shutdown: %v", err)
		}
	}
}
