package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-reconciliation-service/internal/config"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/handlers"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/services"
)

func main() {
	migrateCmd := flag.String("migrate", "", "Migration command (up/down/version)")
	steps := flag.Int("steps", 0, "Number of migration steps (0 means all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.NewConnection(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *migrateCmd != "" {
		if err := handleMigration(cfg, *migrateCmd, *steps); err != nil {
			logger.Error("Migration failed", "command", *migrateCmd, "error", err)
			db.Close()
			os.Exit(1)
		}
		return
	}

	router, err := handlers.SetupRouter(handlers.ServicesFrom(services.NewContainer(db, cfg)), cfg, logger)
	if err != nil {
		logger.Error("Error setting up router", "error", err)
		db.Close()
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Server is running", "address", cfg.ServerAddress, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return
	}
	logger.Info("Server exited gracefully")
}

func handleMigration(cfg *config.Config, command string, steps int) error {
	status, err := database.RunMigration(cfg, command, steps)
	if err != nil {
		return err
	}
	if command != "version" {
		return nil
	}
	if !status.Applied {
		fmt.Println("No migrations have been applied yet")
		return nil
	}
	fmt.Printf("Current migration version: %d (dirty: %v)\n", status.Version, status.Dirty)
	return nil
}
