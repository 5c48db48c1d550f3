package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/DamnnnMat/InvoiceChaser/internal/config"
	"github.com/DamnnnMat/InvoiceChaser/internal/email"
	"github.com/DamnnnMat/InvoiceChaser/internal/handler"
	cronHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/cron"
	invoiceHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/invoice"
	templateHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/template"
	trackHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/track"
	"github.com/DamnnnMat/InvoiceChaser/internal/middleware"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository/postgres"
	"github.com/DamnnnMat/InvoiceChaser/internal/router"
	invoiceService "github.com/DamnnnMat/InvoiceChaser/internal/service/invoice"
	reminderService "github.com/DamnnnMat/InvoiceChaser/internal/service/reminder"
	templateService "github.com/DamnnnMat/InvoiceChaser/internal/service/template"
	trackingService "github.com/DamnnnMat/InvoiceChaser/internal/service/tracking"
	"github.com/DamnnnMat/InvoiceChaser/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	templateRepo := postgres.NewTemplateRepository(base)
	reminderRepo := postgres.NewReminderRepository(db)

	// Optional redis client for the dispatch run lock
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}

	// Initialize services
	mailer := email.NewSMTPService(cfg.Mail)
	resolver := templateService.NewResolver(templateRepo)
	invoiceSvc := invoiceService.NewService(invoiceRepo, paymentRepo)
	templateSvc := templateService.NewService(templateRepo)
	reminderSvc := reminderService.NewService(
		invoiceRepo,
		paymentRepo,
		reminderRepo,
		userRepo,
		resolver,
		mailer,
		redisClient,
		appLogger.With().Str("component", "dispatch").Logger(),
		cfg.Mail.From,
		cfg.App.BaseURL,
	)
	trackingSvc := trackingService.NewService(
		reminderRepo,
		appLogger.With().Str("component", "tracking").Logger(),
	)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.Cron.Secret)
	healthH := handler.NewHealthHandler(db)
	cronH := cronHandler.NewHandler(reminderSvc)
	trackH := trackHandler.NewHandler(trackingSvc)
	invoiceH := invoiceHandler.NewHandler(invoiceSvc, reminderSvc)
	templateH := templateHandler.NewHandler(templateSvc)

	// Setup router
	r := router.NewRouter(authMiddleware, healthH, cronH, trackH, invoiceH, templateH, router.Config{
		RateLimit: rate.Limit(50),
		RateBurst: 100,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
