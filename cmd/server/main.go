package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/snackshop-dev/snackadmin/internal/config"
	"github.com/snackshop-dev/snackadmin/internal/logger"
	"github.com/snackshop-dev/snackadmin/internal/server"
	"github.com/snackshop-dev/snackadmin/internal/workers"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	// Create server
	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	expiry, err := workers.StartCouponExpiry(srv.GetDB(), cfg.Jobs.CouponExpirySchedule, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule coupon expiry")
	}
	if expiry != nil {
		defer expiry.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", version).Msg("Starting SnackShop dev API...")

	// Serve until a shutdown signal arrives
	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
