package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/app"
)

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "Maximum time for the export")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	a, err := app.New(false)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	exporter, err := a.Exporter(ctx)
	if err != nil {
		a.Logger.Fatal("Failed to configure exporter", zap.Error(err))
	}
	if exporter == nil {
		a.Logger.Fatal("Snapshot export is disabled, set RECIPES_EXPORT_BUCKET")
	}

	res, err := exporter.Export(ctx)
	if err != nil {
		a.Logger.Fatal("Export failed", zap.Error(err))
	}
	fmt.Printf("s3://%s/%s (%d recipes, %d ingredients)\n", res.Bucket, res.Key, res.Recipes, res.Ingredients)
	if res.URL != "" {
		fmt.Println(res.URL)
	}
}
