package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yt-dashboard/internal/api"
	"github.com/yt-dashboard/internal/config"
	"github.com/yt-dashboard/internal/logging"
	"github.com/yt-dashboard/internal/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the video source
	source, err := api.NewSource(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize video source")
	}

	// Initialize the view store with the default view
	st := store.New(source, store.Options{
		PageSize: cfg.PageSize,
		Location: store.NewMemoryLocation("/"),
		Logger:   logger,
	})
	defer st.Close()
	if err := st.Initialize(""); err != nil {
		logger.WithError(err).Fatal("Failed to initialize view")
	}

	// Start server
	server := api.NewServer(cfg, st, logger)
	if err := server.Serve(ctx, cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
