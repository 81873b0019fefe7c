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
	"github.com/gofiber/template/django/v3"
	"github.com/rs/zerolog"

	"github.com/vims-insurance/admin-api/internal/config"
	"github.com/vims-insurance/admin-api/internal/database"
	"github.com/vims-insurance/admin-api/internal/handler"
	"github.com/vims-insurance/admin-api/internal/middleware"
	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
	"github.com/vims-insurance/admin-api/internal/router"
	"github.com/vims-insurance/admin-api/internal/security"
	"github.com/vims-insurance/admin-api/internal/service"
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

	if err := db.AutoMigrate(&models.User{}, &models.UserActivity{}, &models.SystemConfiguration{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	uow := repository.NewUnitOfWork(db)

	reportService := service.NewReportService(userRepo, activityRepo, configRepo, db, redisClient, cfg.DashboardCacheTTL, logger)
	userService := service.NewUserService(userRepo, uow, hasher, validate, reportService, logger)
	activityService := service.NewActivityService(activityRepo, userRepo, validate, logger)
	configService := service.NewConfigurationService(configRepo, validate, logger)

	userHandler := handler.NewUserHandler(userService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	configHandler := handler.NewConfigHandler(configService, logger)
	adminHandler := handler.NewAdminHandler(reportService, activityService, configService, cfg.ActivityRetentionDays, logger)
	webHandler := handler.NewWebHandler(cfg, reportService, logger)

	views := django.New(cfg.ViewsDir, ".html")

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		Views:        views,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		UserHandler:     userHandler,
		ActivityHandler: activityHandler,
		ConfigHandler:   configHandler,
		AdminHandler:    adminHandler,
		WebHandler:      webHandler,
		ReadinessProbe:  handler.ReadinessCheck(reportService),
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
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
