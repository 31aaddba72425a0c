package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"langindexer/internal/pkg/administrator"
	"langindexer/internal/pkg/config"
	"langindexer/internal/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	admin, err := administrator.New(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to create administrator", zap.Error(err))
	}

	// Workers run until the queue is closed by Stop.
	if err := admin.ProcessAndIndex(context.Background()); err != nil {
		logger.Log.Fatal("Failed to start workers", zap.Error(err))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- admin.StartService(cfg.ServerPort)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		logger.Log.Info("Received signal, shutting down", zap.String("signal", s.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Log.Error("HTTP service failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	admin.Stop(ctx)
	logger.Log.Info("Shutdown complete")
}
