package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/markmiedema/nexuscheck-sub005/internal/config"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"github.com/markmiedema/nexuscheck-sub005/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger.InitLogger(cfg.App.Stage)
	defer logger.Sync()

	ctx := context.Background()
	srv, err := server.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
