package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/om-chauahan/eventhub/internal/config"
	"github.com/om-chauahan/eventhub/internal/handler"
	"github.com/om-chauahan/eventhub/internal/metrics"
	"github.com/om-chauahan/eventhub/internal/middleware"
	"github.com/om-chauahan/eventhub/internal/repository"
	"github.com/om-chauahan/eventhub/internal/service"
	"github.com/om-chauahan/eventhub/pkg/database"
	"github.com/om-chauahan/eventhub/pkg/email"
	jwtPkg "github.com/om-chauahan/eventhub/pkg/jwt"
	"github.com/om-chauahan/eventhub/pkg/logger"
	"github.com/om-chauahan/eventhub/pkg/qrcode"
	"github.com/om-chauahan/eventhub/pkg/storage"
	"github.com/om-chauahan/eventhub/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg.Admin, zlog); err != nil {
		zlog.Fatal("failed to seed admin", zap.Error(err))
	}

	metrics.Register()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Collaborators
	validator := utils.NewValidator()
	tokens := jwtPkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	emailService := email.NewEmailService(cfg.Email, zlog)
	tickets := qrcode.NewQRService(cfg.Ticket.BaseURL)

	var images storage.ObjectStore
	if cfg.Storage.Enabled() {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.Storage)
		if err != nil {
			zlog.Fatal("failed to initialize object storage", zap.Error(err))
		}
		images = s3Storage
	} else {
		zlog.Info("object storage not configured, image uploads disabled")
	}

	// Services
	authService := service.NewAuthService(userRepo, tokens, validator, emailService, zlog)
	eventService := service.NewEventService(eventRepo, validator, emailService, images, tickets, zlog)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, zlog)
	eventHandler := handler.NewEventHandler(eventService, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "eventhub",
		BodyLimit:    service.MaxImageSize + 1<<20,
		ErrorHandler: handler.ErrorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(zlog))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimitMax,
		Expiration: cfg.Server.RateLimitWindow(),
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	handler.RegisterRoutes(app, authHandler, eventHandler, middleware.AuthMiddleware(authService, zlog))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
