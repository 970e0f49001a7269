package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tmdbcat/tmdbcat/internal/api"
	"github.com/tmdbcat/tmdbcat/internal/config"
	"github.com/tmdbcat/tmdbcat/internal/logger"
	"github.com/tmdbcat/tmdbcat/internal/startup"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env", ".env", "Path to an optional dotenv file")
	mock := flag.Bool("mock", false, "Serve canned metadata instead of calling upstream providers")
	flag.Parse()

	// Values already present in the environment win over the dotenv file
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("failed to load env file: " + err.Error())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *mock {
		cfg.Metadata.Mock = true
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: 1000,
	})
	defer log.Close()

	log.Info().
		Str("version", cfg.Addon.Version).
		Str("logLevel", cfg.Logging.Level).
		Bool("mock", cfg.Metadata.Mock).
		Msg("starting tmdbcat")

	if cfg.Metadata.TMDB.APIKey == "" && !cfg.Metadata.Mock {
		log.Warn().Msg("no TMDB API key configured, catalogs and metadata will be empty")
	}

	server, err := api.NewServer(cfg, log, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}
	log.SetBroadcastHub(server.Hub())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the filter options in the background so a slow upstream does not
	// delay the listener.
	go func() {
		err := startup.WithRetry(ctx, "catalog options warm-up", startup.DefaultRetryConfig(), func() error {
			return server.WarmUp(ctx)
		}, &log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("catalog options warm-up failed, options will load on first request")
		}
	}()

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
