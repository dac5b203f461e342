package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/MiguelIbrahimE/TrainBuilder/internal/api"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/cache"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/config"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/db"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/logger"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/middleware"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/network"
	"github.com/MiguelIbrahimE/TrainBuilder/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Logging)

	log.Info().Str("env", cfg.Environment).Msg("starting TrainBuilder API server")

	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}
	defer cleanup()

	networkCache, healthChecks := buildCache(cfg)
	defer cache.Close()
	svc := network.NewService(repo, networkCache)
	handlers := api.NewNetworkHandlers(svc)

	app := fiber.New(fiber.Config{
		AppName:      "TrainBuilder API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: api.ErrorHandler(cfg.Development()),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	if cfg.RateLimit.Enabled {
		if client, err := cache.GetClient(); err == nil {
			app.Use(middleware.RateLimit(client, cfg.RateLimit.PerSecond))
		} else {
			log.Warn().Err(err).Msg("rate limiting requested but Redis unavailable, disabled")
		}
	}

	app.Get("/health", api.Health(healthChecks))
	api.RegisterRoutes(app, handlers)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("server listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// buildRepository selects the document store backend from configuration
func buildRepository(cfg *config.Config) (store.Repository, func(), error) {
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := db.GetDB()
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Msg("using postgres document store")
		return repo, db.Close, nil
	case "file":
		repo, err := store.NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.Store.DataDir).Msg("using file document store")
		return repo, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildCache selects the network cache backend and the health checks that
// go with the chosen infrastructure
func buildCache(cfg *config.Config) (cache.NetworkCache, map[string]api.HealthCheck) {
	checks := map[string]api.HealthCheck{}
	if cfg.Store.Backend == "postgres" {
		checks["database"] = db.HealthCheck
	}

	switch cfg.Cache.Backend {
	case "redis":
		client, err := cache.GetClient()
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to local cache")
			return cache.NewLocalCache(cfg.Cache.TTL), checks
		}
		checks["redis"] = cache.HealthCheck
		log.Info().Msg("using Redis network cache")
		return cache.NewRedisCache(client, cfg.Cache.TTL), checks
	case "local":
		return cache.NewLocalCache(cfg.Cache.TTL), checks
	case "none":
		return nil, checks
	default:
		log.Warn().Str("backend", cfg.Cache.Backend).Msg("unknown cache backend, caching disabled")
		return nil, checks
	}
}
