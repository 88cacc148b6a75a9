package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tradepost/internal/config"
	"github.com/tradepost/internal/http"
	"github.com/tradepost/internal/jobs"
	"github.com/tradepost/internal/logger"
	"github.com/tradepost/internal/store"
)

func main() {
	// Load .env file if it exists (optional, won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.Init(cfg.Environment)

	if cfg.Auth.Google.Enabled() {
		clientID := cfg.Auth.Google.ClientID
		if len(clientID) > 8 {
			clientID = clientID[:8]
		}
		slogger.Info("Google OAuth configured", "client_id_prefix", clientID)
	} else {
		slogger.Info("Google OAuth not configured, password login only")
	}

	database, err := store.Open(cfg.StorePath, cfg.SeedPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	users, admins := database.CountUsers()
	listings, _ := database.CountListings()
	slogger.Info("store opened", "path", cfg.StorePath, "users", users, "admins", admins, "listings", listings)
	if admins == 0 {
		slogger.Warn("no admin account yet, the first registered user becomes admin")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := jobs.NewSnapshotScheduler(database, cfg.SnapshotDir, cfg.SnapshotKeep, slogger)
	if err := scheduler.Start(ctx, cfg.SnapshotSpec); err != nil {
		log.Fatalf("Failed to start snapshot scheduler: %v", err)
	}

	server := http.NewServer(cfg, database)

	slogger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	slogger.Info("server stopped")
}
