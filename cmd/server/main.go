// Package main is the entry point of the QuickLoan API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"quickloan/internal/config"
	"quickloan/internal/handlers"
	"quickloan/internal/logger"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/cache"
	"quickloan/internal/routes"
	"quickloan/internal/services/settlement"
	"quickloan/internal/storage"
	"quickloan/internal/utils"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logger.Setup(cfg.Log, config.IsProduction())

	if cfg.Auth.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	db, err := repositories.Open(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer repositories.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("failed to get database instance")
	}

	cacheService, closeCache := openCache(cfg.Redis)
	defer closeCache()

	store, closeStore, err := storage.New(context.Background(), cfg.Storage.Backend, cfg.Storage.LocalRoot, cfg.Storage.Bucket)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure file storage")
	}
	defer closeStore()

	app := fiber.New(fiber.Config{
		AppName:   "QuickLoan API",
		BodyLimit: cfg.Server.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return utils.Respond(c, fe.Code, fiber.Map{"error": fe.Message})
			}
			return utils.Error(c, err)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: logger.Writer(),
	}))

	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
	app.Use("/api/register", authLimiter)
	app.Use("/api/login", authLimiter)

	checks := map[string]handlers.Check{
		"database": sqlDB.PingContext,
	}
	if cacheService != nil {
		checks["redis"] = cacheService.HealthCheck
	}

	routes.SetupRoutes(app, routes.Dependencies{
		Config:       cfg,
		Repos:        repositories.NewRepositories(db),
		Cache:        cacheService,
		Store:        store,
		Gateway:      settlement.NewSimulated(),
		HealthChecks: checks,
	})

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()
	logrus.WithField("port", cfg.Server.Port).Info("QuickLoan API started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}

// openCache connects to Redis. The service is nil when the server cannot be
// reached; the returned close func is always safe to call.
func openCache(cfg config.RedisConfig) (*cache.CacheService, func()) {
	client := cache.NewRedisClient(cfg)
	closeClient := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close Redis connection")
		}
	}

	svc := cache.NewCacheService(client, cfg.TTL)
	if err := svc.HealthCheck(context.Background()); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, caching disabled")
		return nil, closeClient
	}
	return svc, closeClient
}
