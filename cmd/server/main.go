// Package main runs the event registration HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/youssifElhelaly12/rayaBackend/config"
	"github.com/youssifElhelaly12/rayaBackend/internal/answers"
	"github.com/youssifElhelaly12/rayaBackend/internal/auth"
	"github.com/youssifElhelaly12/rayaBackend/internal/emaillog"
	"github.com/youssifElhelaly12/rayaBackend/internal/events"
	"github.com/youssifElhelaly12/rayaBackend/internal/importer"
	"github.com/youssifElhelaly12/rayaBackend/internal/invitations"
	"github.com/youssifElhelaly12/rayaBackend/internal/mailer"
	"github.com/youssifElhelaly12/rayaBackend/internal/middleware"
	"github.com/youssifElhelaly12/rayaBackend/internal/notifications"
	"github.com/youssifElhelaly12/rayaBackend/internal/questions"
	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/internal/templates"
	"github.com/youssifElhelaly12/rayaBackend/internal/userevents"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
	"github.com/youssifElhelaly12/rayaBackend/pkg/database"
	"github.com/youssifElhelaly12/rayaBackend/pkg/queue"
	"github.com/youssifElhelaly12/rayaBackend/pkg/redis"
	"github.com/youssifElhelaly12/rayaBackend/pkg/response"
	"github.com/youssifElhelaly12/rayaBackend/pkg/storage"
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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	uploads := newUploadStore(ctx, cfg, logger)

	sender, err := mailer.NewSMTPSender(cfg.Email)
	if err != nil {
		logger.Fatal("mailer", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.SessionExpireHours, cfg.JWT.InvitationExpireDays)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Repositories
	authRepo := auth.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	tagRepo := tags.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	joinRepo := userevents.NewRepository(pool)
	questionRepo := questions.NewRepository(pool)
	answerRepo := answers.NewRepository(pool)
	invitationTemplates := templates.NewInvitationRepository(pool)
	verifiedTemplates := templates.NewVerifiedRepository(pool)
	logRepo := emaillog.NewRepository(pool)

	// Handlers
	authHandler := auth.NewHandler(authRepo, tokens, logger)
	userHandler := users.NewHandler(userRepo, tagRepo, logger)
	tagHandler := tags.NewHandler(tagRepo, logger)
	eventHandler := events.NewHandler(eventRepo, uploads, cfg.Server.BaseURL, logger)
	exportHandler := events.NewExportHandler(eventRepo, joinRepo, questionRepo, answerRepo, logger)
	questionHandler := questions.NewHandler(questionRepo, eventRepo, logger)
	answerHandler := answers.NewHandler(answerRepo, logger)
	invitationTemplateHandler := templates.NewHandler(invitationTemplates, eventRepo, logger)
	verifiedTemplateHandler := templates.NewHandler(verifiedTemplates, eventRepo, logger)
	importHandler := importer.NewHandler(userRepo, tagRepo, logger)
	emailLogHandler := emaillog.NewHandler(logRepo, jobQueue, logger)

	sendService := notifications.NewService(
		userRepo, tagRepo, eventRepo, invitationTemplates, joinRepo, logRepo,
		tokens, sender, logger, cfg.Bulk.SendConcurrency, cfg.Email.DefaultSubject)
	sendHandler := notifications.NewHandler(sendService, logger)

	invitationHandler := invitations.NewHandler(
		userRepo, eventRepo, joinRepo, answerRepo, verifiedTemplates, logRepo,
		tokens, jobQueue, uploads, logger, cfg.Email.ConfirmationSubject)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.Static("/uploads", cfg.Storage.UploadDir)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// Invitee-facing endpoints: reached from the emailed invitation link.
	router.POST("/invitations/accept", invitationHandler.Accept)
	router.GET("/invitations/validate/:token", invitationHandler.ValidateToken)

	// Admin API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(tokens))
	{
		// Users
		api.POST("/users", userHandler.Create)
		api.GET("/users", userHandler.List)
		api.GET("/searchEmail", userHandler.SearchByEmail)
		api.GET("/users/:id", userHandler.GetByID)
		api.PUT("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Delete)
		api.POST("/import", importHandler.Import)

		// Tags
		api.POST("/tags", tagHandler.Create)
		api.GET("/tags", tagHandler.List)
		api.GET("/tags/:id", tagHandler.GetByID)
		api.PUT("/tags/:id", tagHandler.Update)
		api.DELETE("/tags/:id", tagHandler.Delete)
		api.POST("/tags/:id/users", tagHandler.AddMember)
		api.DELETE("/tags/:id/users/:userId", tagHandler.RemoveMember)

		// Events
		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.GET("/events/:id/export", exportHandler.Export)
		api.POST("/events/:id/checkin/:userId", invitationHandler.CheckIn)

		// Per-event email delivery log
		api.GET("/events/:id/emails", emailLogHandler.ListByEvent)
		api.POST("/events/:id/emails/:logId/resend", emailLogHandler.Resend)

		// Questions
		api.POST("/events/:id/questions", questionHandler.Create)
		api.GET("/events/:id/questions", questionHandler.ListByEvent)
		api.GET("/eventsWithQuestions", questionHandler.EventsWithQuestions)
		api.GET("/questions/:id", questionHandler.GetByID)
		api.PUT("/questions/:id", questionHandler.Update)
		api.DELETE("/questions/:id", questionHandler.Delete)

		// Answers
		api.POST("/user-answers", answerHandler.Create)
		api.GET("/user-answers/user/:userId", answerHandler.ListByUser)
		api.GET("/user-answers/user/:userId/:eventId", answerHandler.ListByUser)
		api.PUT("/user-answers/:id", answerHandler.Update)
		api.DELETE("/user-answers/:id", answerHandler.Delete)

		// Email templates, one of each kind per event
		mountTemplates(api.Group("/eventEmailTemplates"), invitationTemplateHandler)
		mountTemplates(api.Group("/verifiedEmailTemplates"), verifiedTemplateHandler)
		api.GET("/events/:id/eventEmailTemplate", invitationTemplateHandler.GetByEvent)
		api.GET("/events/:id/verifiedEmailTemplate", verifiedTemplateHandler.GetByEvent)

		// Invitation sending
		api.POST("/email/bulk", sendHandler.SendBulk)
		api.POST("/email/bulk-users", sendHandler.SendBulkUsers)
		api.POST("/email/single/:userId", sendHandler.SendSingle)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func mountTemplates(g *gin.RouterGroup, h *templates.Handler) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func newUploadStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) storage.Store {
	if cfg.AWS.Region != "" && cfg.AWS.UploadsBucket != "" {
		s3Store, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.UploadsBucket,
		}, logger)
		if err == nil {
			return s3Store
		}
		logger.Warn("s3 uploads disabled, falling back to local disk", zap.Error(err))
	}
	local, err := storage.NewLocal(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Fatal("upload dir", zap.Error(err))
	}
	return local
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
