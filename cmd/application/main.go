package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gomarketplace_ingest/config"
	"gomarketplace_ingest/internal/catalog/app"
	"gomarketplace_ingest/pkg/dbconnect/postgres"
	"gomarketplace_ingest/pkg/logger"
)

func main() {
	bootLog := logger.NewLogger(nil, "[Main]")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		bootLog.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Log, "[Main]")
	log.Log("Started catalog ingestion")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connector := postgres.NewPgConnector(&cfg.Postgres, cfg.Postgres.MaxConns, log.WithPrefix("[Postgres]"))
	server := app.NewIngestServer(connector, cfg, log.WithPrefix("[IngestServer]"))
	if err := server.Run(ctx); err != nil {
		log.Error("Ingestion aborted: %v", err)
		stop()
		os.Exit(1)
	}
	log.Log("Stopped")
}
