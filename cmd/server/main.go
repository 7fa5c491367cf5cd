package main

import (
	"context"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/opinionpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/opinionpoll/internal/config"
	"github.com/vncsmyrnk/opinionpoll/internal/core/services"
	"github.com/vncsmyrnk/opinionpoll/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DB.ConnString(), postgres.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	// Repositories
	pollRepo := postgres.NewPollRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	tallyRepo := postgres.NewTallyRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	postRepo := postgres.NewPostRepository(db)

	// Services
	pollService := services.NewPollService(pollRepo)
	voteService := services.NewVoteService(voteRepo)
	tallyService := services.NewTallyService(pollRepo, tallyRepo)
	postService := services.NewPostService(postRepo)
	authService := services.NewAuthService(adminRepo, services.AuthConfig{
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	metrics := http.NewMetrics()
	handler := http.NewHandler(http.Handlers{
		Polls: http.NewPollHandler(pollService, tallyService, logger),
		Votes: http.NewVoteHandler(voteService, metrics, logger),
		Posts: http.NewPostHandler(postService, logger),
		Auth:  http.NewAuthHandler(authService, logger),
	}, http.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		VoteLimiter:    http.NewRateLimiter(cfg.Vote.RatePerMinute, cfg.Vote.Burst),
		Metrics:        metrics,
		DB:             db,
		Logger:         logger,
		TrustProxy:     cfg.HTTP.TrustProxy,
	})

	server := &stdhttp.Server{Addr: cfg.HTTP.Addr(), Handler: handler}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
