package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vdubya/aca-viewer/handlers"
	"github.com/vdubya/aca-viewer/pkg/metrics"
	"github.com/vdubya/aca-viewer/services"
	"github.com/vdubya/aca-viewer/store"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	addr := flag.String("addr", "", "HTTP listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(*envFile); err != nil {
		logger.WithError(err).Warnf("Could not load env file %s", *envFile)
	}

	db, err := services.ConnectDatabase(logger)
	if err != nil {
		logger.WithError(err).Fatal("Database connection failed")
	}
	defer db.Close()

	repo := store.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.WithError(err).Fatal("Schema migration failed")
	}

	pipelines := services.NewPipelineService(services.DefaultPalantirClient(), services.SimulateEnabled())
	if pipelines.Simulate {
		logger.Info("SIMULATE_PALANTIR enabled, pipeline calls are served locally")
	}

	server := handlers.NewServer(repo, pipelines)

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = os.Getenv("LISTEN_ADDR")
	}
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.Routes(),
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateSystemMetrics()
		}
	}()

	go func() {
		logger.Infof("ACA Viewer listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Infof("Received signal %v, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}
	logger.Info("Server shutdown complete")
}
