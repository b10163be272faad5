// Command triggerd runs the trigger analysis service: it drains item
// sources through the scoring pipeline, persists deduplicated triggers to
// sqlite, and serves the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonesrussell/pharma-triggers/internal/analyzer"
	"github.com/jonesrussell/pharma-triggers/internal/api"
	"github.com/jonesrussell/pharma-triggers/internal/config"
	"github.com/jonesrussell/pharma-triggers/internal/logger"
	"github.com/jonesrussell/pharma-triggers/internal/pipeline"
	"github.com/jonesrussell/pharma-triggers/internal/spool"
	"github.com/jonesrussell/pharma-triggers/internal/storage"
	"github.com/jonesrussell/pharma-triggers/internal/telemetry"
	"github.com/jonesrussell/pharma-triggers/internal/trigger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config YAML (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "triggerd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("triggerd starting",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.String("db", cfg.Database.Path))

	db, err := storage.NewSQLiteConnection(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewTriggerRepository(db)
	tp := telemetry.NewProvider()

	deps := pipeline.Dependencies{
		Keywords:  analyzer.NewKeywordMatcher(cfg.Taxonomy, log),
		Sentiment: analyzer.NewSentimentScorer(cfg.Sentiment),
		Quantity:  analyzer.NewQuantityExtractor(cfg.Quantity),
		Entity:    analyzer.NewEntityExtractor(),
		Scorer:    trigger.NewScorer(cfg.Scoring, log),
		Dedup:     trigger.NewDeduplicator(store, log),
		Telemetry: tp,
		Logger:    log,
	}
	pipe := pipeline.New(deps, cfg.Dedup.Bucket)
	batch := pipeline.NewBatchProcessor(pipe, cfg.Service.Concurrency, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runner *pipeline.Runner
	if cfg.Service.SpoolDir != "" {
		sources := []pipeline.ItemSource{spool.New(cfg.Service.SpoolDir, log)}
		runner = pipeline.NewRunner(sources, batch, pipeline.RunnerConfig{
			PollInterval:  cfg.Service.PollInterval,
			RatePerSecond: cfg.Service.RatePerSecond,
		}, log)
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start runner: %w", err)
		}
		defer runner.Stop()
	}

	handler := api.NewHandler(pipe, batch, store, tp, log, cfg.Service.Name, cfg.Service.Version)
	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("triggerd stopped")
	}

	return nil
}
