// @title PodPulse API
// @version 1.0
// @description Event coordination for small trusted groups: RSVPs, live arrivals, shared checklists, and the notification fan-out behind them.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podpulse/config"
	_ "podpulse/docs"
	"podpulse/internal/adapters/auth"
	"podpulse/internal/adapters/email"
	"podpulse/internal/adapters/push"
	"podpulse/internal/adapters/realtime"
	httpdelivery "podpulse/internal/delivery/http"
	"podpulse/internal/delivery/http/controllers"
	"podpulse/internal/delivery/http/middleware"
	"podpulse/internal/repository/postgres"
	"podpulse/internal/services"
)

const serviceTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	broker := realtime.NewRedisBroker(redisClient, logger)

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	attendanceRepo := postgres.NewAttendanceRepository(db)
	checklistRepo := postgres.NewChecklistRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	tokenRepo := postgres.NewPushTokenRepository(db)

	// Adapters
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	pushClient := push.NewClient(push.Config{
		GatewayURL:  cfg.PushGatewayURL,
		BatchSize:   cfg.PushBatchSize,
		Concurrency: cfg.PushConcurrency,
		QueueSize:   cfg.PushQueueSize,
	}, logger)
	defer pushClient.Close()

	mailer, err := email.NewMailer(email.Config{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SES.Region,
			AccessKeyID:     cfg.Email.SES.AccessKeyID,
			SecretAccessKey: cfg.Email.SES.SecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}

	// Services
	notifier := services.NewChangeNotifier(
		services.NewRecipientResolver(membershipRepo, attendanceRepo),
		profileRepo,
		notificationRepo,
		tokenRepo,
		broker,
		pushClient,
		mailer,
		email.NewTemplateRenderer(),
		logger,
	)
	eventService := services.NewEventService(eventRepo, membershipRepo, notifier, logger, serviceTimeout)
	attendanceService := services.NewAttendanceService(attendanceRepo, eventRepo, membershipRepo, broker, notifier, logger, serviceTimeout)
	checklistService := services.NewChecklistService(checklistRepo, eventRepo, membershipRepo, broker, logger, serviceTimeout)
	inboxService := services.NewInboxService(notificationRepo, serviceTimeout)

	// HTTP
	requireAuth := middleware.RequireAuth(verifier, logger)
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Event:      controllers.NewEventController(logger, eventService),
		Attendance: controllers.NewAttendanceController(logger, attendanceService),
		Checklist:  controllers.NewChecklistController(logger, checklistService),
		Inbox:      controllers.NewInboxController(logger, inboxService),
		Realtime:   controllers.NewRealtimeController(logger, broker, eventService),
	}, requireAuth)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
