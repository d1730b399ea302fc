package main

import (
	"context"
	"log"
	"os"

	"github.com/yourname/healthsync/internal"
	"github.com/yourname/healthsync/internal/api"
	"github.com/yourname/healthsync/internal/config"
	"github.com/yourname/healthsync/internal/insight"
	"github.com/yourname/healthsync/internal/service"
	"github.com/yourname/healthsync/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("HEALTHSYNC_CONFIG"))
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := internal.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	store, err := storage.NewMetricStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	provider := insight.NewOllamaProvider(cfg.Provider.BaseURL, cfg.Provider.Model, cfg.Provider.Timeout, logger)
	engine := service.NewAggregationEngine(store, logger)
	pipeline := insight.NewPipeline(provider, logger)

	app := api.NewServer(logger, store, engine, pipeline, cfg.SubjectID)
	r := api.NewRouter(app)

	logger.Infof("healthsync listening on %s (backend=%s)", cfg.Addr, cfg.StorageBackend)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
