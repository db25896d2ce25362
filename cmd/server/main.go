package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zfogg/echoprint/internal/api"
	"github.com/zfogg/echoprint/internal/config"
	"github.com/zfogg/echoprint/internal/index"
	"github.com/zfogg/echoprint/internal/logger"
	"github.com/zfogg/echoprint/internal/metrics"
	"github.com/zfogg/echoprint/internal/streaming"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== echoprint server starting ===")

	if envErr != nil {
		logger.Log.Warn("Warning: .env file not found, using system environment variables")
	}

	metrics.Initialize()

	db, err := index.Connect(cfg.DSN())
	if err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	store := index.New(db)
	if err := store.CreateSchema(); err != nil {
		logger.FatalWithFields("Failed to create schema", err)
	}

	streamServer := streaming.NewServer(store)
	identifyHandler := api.NewIdentifyHandler(store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/identify", streamServer.Handler())
	mux.HandleFunc("/api/v1/identify", identifyHandler.ServeHTTP)
	mux.Handle("/internal/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		logger.Log.Info("echoprint server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("Server exited")
}
