package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"yashubustudio/careermatch/careers"
	"yashubustudio/careermatch/internal/logging"
	"yashubustudio/careermatch/internal/metrics"
	"yashubustudio/careermatch/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: $CAREERMATCH_CONFIG or ./config.yaml)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Fatal().Err(err).Msg("load .env")
	}
	cfg, err := careers.LoadConfig(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	embedder, err := careers.NewEmbedder(cfg.Embedder)
	if err != nil {
		logging.Fatal().Err(err).Msg("init embedder")
	}
	service, err := careers.NewService(embedder, cfg, logging.Component("careers"), careers.WithObserver(metrics.Recorder{}))
	if err != nil {
		logging.Fatal().Err(err).Msg("init service")
	}
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A server without a corpus cannot answer anything, so fail at startup.
	if err := service.EnsureLoaded(ctx); err != nil {
		service.Close()
		logging.Fatal().Err(err).Msg("load corpus")
	}

	srv := server.New(service, logging.Logger())
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		logging.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
}
