// Command server runs the blog platform HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/engine"
	"blog-platform/internal/handlers"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(utils.LoggerOptions{Format: cfg.LogFormat, Debug: cfg.Debug})
	metrics := utils.NewMetricsCollector()

	ctx := context.Background()
	db, err := database.NewMongoDB(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.ConnectTimeout)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to MongoDB", "database", cfg.Database.Name)

	indexCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		cancel()
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}
	cancel()

	// Initialize actor system
	system := actor.NewActorSystem()
	blogEngine := engine.NewEngine(system, db, metrics, logger, cfg.Server.RequestTimeout)

	server := handlers.NewServer(cfg, blogEngine, db, metrics, logger)
	if server.UploadsDir != "" {
		if err := os.MkdirAll(server.UploadsDir, 0o755); err != nil {
			logger.Warn("uploads directory unavailable", "dir", server.UploadsDir, "error", err)
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", httpServer.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	blogEngine.Stop()
	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("database disconnect error", "error", err)
	}
}
