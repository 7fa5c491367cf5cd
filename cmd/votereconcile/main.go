package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/opinionpoll/internal/config"
	"github.com/vncsmyrnk/opinionpoll/internal/core/services"
	"github.com/vncsmyrnk/opinionpoll/internal/logger"
)

func main() {
	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.Host, "db-host", cfg.Host, "Database host")
	flag.StringVar(&cfg.Port, "db-port", cfg.Port, "Database port")
	flag.StringVar(&cfg.User, "db-user", cfg.User, "Database user")
	flag.StringVar(&cfg.Password, "db-pass", cfg.Password, "Database password")
	flag.StringVar(&cfg.Name, "db-name", cfg.Name, "Database name")
	timeout := flag.Duration("timeout", 5*time.Minute, "Maximum job duration")
	flag.Parse()

	logger, err := logger.New("", "info")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.ConnString(), postgres.PoolConfig{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	summaryService := services.NewSummaryService(
		postgres.NewPollRepository(db),
		postgres.NewTallyRepository(db),
		logger,
	)

	logger.Info("starting vote counter reconciliation")

	fixed, err := summaryService.ReconcileAllVoteCounts(ctx)
	if err != nil {
		logger.Fatal("reconciliation failed", zap.Int("corrected", fixed), zap.Error(err))
	}

	logger.Info("reconciliation completed", zap.Int("corrected", fixed))
}
