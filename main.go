// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/marczlle/letterboxd-v2/cmd"
	"github.com/marczlle/letterboxd-v2/internal/data/repository"
	"github.com/marczlle/letterboxd-v2/internal/wire"
	"github.com/marczlle/letterboxd-v2/pkg/database"
	"github.com/marczlle/letterboxd-v2/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting reservation coordinator",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Reservation archive is optional; without a database the coordinator
	// runs purely in memory.
	var db database.PgxIface
	if config.Database.Enabled() {
		db, err = database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Reservation archive connected")
	} else {
		logger.Info("No database configured, archive disabled")
	}

	// Initialize repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reap abandoned sessions in the background
	go app.Hub.Run(ctx, time.Duration(config.Reservation.SweepIntervalSeconds)*time.Second)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(ctx, app.Router, config.App.Port)
}
