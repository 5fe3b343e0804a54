// Package main runs the background email worker (confirmation and resend jobs).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/youssifElhelaly12/rayaBackend/config"
	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/internal/emaillog"
	"github.com/youssifElhelaly12/rayaBackend/internal/events"
	"github.com/youssifElhelaly12/rayaBackend/internal/mailer"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
	"github.com/youssifElhelaly12/rayaBackend/internal/worker"
	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
	"github.com/youssifElhelaly12/rayaBackend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	sender, err := mailer.NewSMTPSender(cfg.Email)
	if err != nil {
		logger.Fatal("mailer", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.SessionExpireHours, cfg.JWT.InvitationExpireDays)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	processor := worker.NewEmailProcessor(
		users.NewRepository(pool),
		events.NewRepository(pool),
		userevents.NewRepository(pool),
		templates.NewInvitationRepository(pool),
		templates.NewVerifiedRepository(pool),
		emaillog.NewRepository(pool),
		tokens, sender, jobQueue, logger,
		cfg.Email.DefaultSubject, cfg.Email.ConfirmationSubject)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
