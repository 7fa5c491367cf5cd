package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/opinionpoll/internal/config"
	"github.com/vncsmyrnk/opinionpoll/internal/logger"
)

// Usage:
//
//	migrations            apply every up migration
//	migrations 003_create_votes.down
func main() {
	flag.Parse()

	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logger.New("", "info")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.ConnString(), postgres.PoolConfig{MaxOpenConns: 1})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if flag.NArg() == 0 {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logger.Info("all migrations applied")
		return
	}

	name, content, err := postgres.MigrationContent(flag.Arg(0))
	if err != nil {
		logger.Fatal("failed to find migration", zap.String("name", flag.Arg(0)), zap.Error(err))
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		logger.Fatal("failed to execute migration", zap.String("file", name), zap.Error(err))
	}

	logger.Info("migration file executed successfully", zap.String("file", name))
}
