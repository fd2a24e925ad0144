package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/config"
	"github.com/edupulse/engage-api/internal/database"
	"github.com/edupulse/engage-api/internal/handler"
	"github.com/edupulse/engage-api/internal/middleware"
	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/internal/notification"
	"github.com/edupulse/engage-api/internal/repository"
	"github.com/edupulse/engage-api/internal/router"
	"github.com/edupulse/engage-api/internal/service"
	"github.com/edupulse/engage-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.ParentProfile{},
		&models.Lesson{},
		&models.LessonCompletion{},
		&models.ClassSession{},
		&models.ClassBooking{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var outbound mailer.Mailer
	outbound, err = mailer.New(mailer.Config{
		APIKey:    cfg.SendgridAPIKey,
		FromName:  cfg.SendgridFromName,
		FromEmail: cfg.SendgridFromEmail,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("sendgrid not configured, falling back to log delivery")
		outbound = mailer.NewLogMailer(logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := notification.NewStore()
	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	engagementService := service.NewEngagementService(service.EngagementDeps{
		Students: repository.NewStudentRepository(db),
		Lessons:  repository.NewLessonRepository(db),
		Bookings: repository.NewBookingRepository(db),
		Parents:  repository.NewParentRepository(db),
		Presence: repository.NewPresenceRepository(redisClient),
		Resolver: authz.NewResolver(repository.NewDirectory(db)),
		Store:    store,
		Mailer:   outbound,
		Activity: activityService,
	}, validate, logger)
	notificationService := service.NewNotificationService(store, validate, logger)

	engagementHandler := handler.NewEngagementHandler(engagementService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.StreamKeepAlive)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EngagementHandler:   engagementHandler,
		NotificationHandler: notificationHandler,
		ActivityHandler:     activityHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
