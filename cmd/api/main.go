package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/app"
	"github.com/pageza/recipe-catalog/backend/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(true)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	deps, err := a.Dependencies(ctx)
	if err != nil {
		a.Logger.Fatal("Failed to build dependencies", zap.Error(err))
	}

	srv, err := server.New(a.Config, deps)
	if err != nil {
		a.Logger.Fatal("Failed to create server", zap.Error(err))
	}

	a.Logger.Info("Recipe catalog starting",
		zap.String("addr", srv.Addr()),
		zap.Bool("auth", deps.Auth != nil),
		zap.Bool("export", deps.Exporter != nil),
	)
	if err := srv.Run(ctx); err != nil {
		a.Logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	a.Logger.Info("Server exited")
}
