package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	version := flag.Bool("version", false, "Print the current schema version")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog := logger.Must(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: config.IsDevelopment()})
	defer zlog.Sync()

	if cfg.DBDriver != "postgres" {
		zlog.Fatal("Versioned migrations require postgres", zap.String("driver", cfg.DBDriver))
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.PostgresURL()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db, cfg.DBName, zlog)
	if err != nil {
		zlog.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil {
			zlog.Fatal("Failed to read schema version", zap.Error(err))
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	case *rollback:
		if err := m.Down(); err != nil {
			zlog.Fatal("Rollback failed", zap.Error(err))
		}
	default:
		if err := m.Up(); err != nil {
			zlog.Fatal("Migration failed", zap.Error(err))
		}
	}
}
