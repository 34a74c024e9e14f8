package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tabletophq/groupfinder/config"
	"github.com/tabletophq/groupfinder/internal/cleanup"
	"github.com/tabletophq/groupfinder/internal/email"
	"github.com/tabletophq/groupfinder/internal/health"
	"github.com/tabletophq/groupfinder/internal/infrastructure/postgres"
	ctxlog "github.com/tabletophq/groupfinder/internal/log"
	"github.com/tabletophq/groupfinder/internal/metrics"
	httptransport "github.com/tabletophq/groupfinder/internal/transport/http"
	"github.com/tabletophq/groupfinder/internal/transport/http/handler"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// Stores
	userRepo := postgres.NewUserRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	requestRepo := postgres.NewGroupRequestRepository(pool)
	tokenRepo := postgres.NewResetTokenRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Workflows
	userUsecase := usecase.NewUserUsecase(userRepo)
	sessionUsecase := usecase.NewSessionUsecase(userRepo, sessionRepo, []byte(cfg.JWTSecret))
	groupUsecase := usecase.NewGroupUsecase(groupRepo)
	requestUsecase := usecase.NewGroupRequestUsecase(requestRepo, groupRepo)
	passwordUsecase := usecase.NewPasswordUsecase(userRepo, tokenRepo, emailSender, logger)

	handlers := httptransport.Handlers{
		User:         handler.NewUserHandler(userUsecase, logger),
		Session:      handler.NewSessionHandler(sessionUsecase, logger),
		Password:     handler.NewPasswordHandler(passwordUsecase, logger),
		Group:        handler.NewGroupHandler(groupUsecase, logger),
		GroupRequest: handler.NewGroupRequestHandler(requestUsecase, logger),
	}

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	cleaner := cleanup.NewCleaner(tokenRepo, sessionRepo, logger)
	cronRunner, err := cleaner.Start(ctx, cfg.CleanupCron)
	if err != nil {
		stop()
		log.Fatalf("cleanup schedule: %v", err)
	}

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, handlers, sessionRepo, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	<-cronRunner.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
