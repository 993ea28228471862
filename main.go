package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fithub/config"
	"fithub/database"
	"fithub/handlers"
	"fithub/handlers/admin"
	"fithub/jobs"
	"fithub/middleware"
	"fithub/progression"
	"fithub/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("FATAL: ", err)
	}
	cfg.SetupLogging()

	if cfg.IsProduction() && cfg.CORSOrigins == "http://localhost:3000" {
		log.Warn("CORS_ORIGINS not properly configured for production")
	}
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is empty; only database admins can log in")
	}

	middleware.Configure(cfg.JWTSecret, cfg.JWTTTL)

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer database.CloseDB()

	loc := cfg.Location()
	svc := services.New(database.GetDB(), services.Options{
		Exp:              cfg.ExpConfig(),
		Calendar:         progression.NewCalendar(progression.SystemClock, loc, cfg.DayResetHour),
		DefaultGraceDays: cfg.DefaultGraceDays,
	})
	handlers.Init(svc)
	admin.Init(svc, cfg.AdminUsername, cfg.AdminPasswordHash)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobCfg := jobs.Config{
		Location:      loc,
		PruneSchedule: cfg.EventPruneSchedule,
		Retention:     cfg.EventRetention,
	}
	if cfg.StreakSweepEnabled {
		jobCfg.SweepSchedule = cfg.StreakSweepSchedule
	}
	scheduler := jobs.NewScheduler(jobCfg, svc.Streaks, svc.Events)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler: ", err)
	}
	defer scheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg.IsProduction()),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency}) ${locals:requestid}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimit(cfg.RateLimitEnabled, cfg.RateLimitMax, cfg.RateLimitWindow,
		"Too many requests. Please try again later."))
	authLimiter := middleware.RateLimit(cfg.RateLimitEnabled, cfg.AuthRateLimitMax, cfg.AuthRateLimitWindow,
		"Too many authentication attempts. Please try again later.")

	handlers.Routes(app, authLimiter)

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("HTTP shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"port":       cfg.Port,
		"env":        cfg.AppEnv,
		"timezone":   loc.String(),
		"reset_at":   cfg.DayResetHour,
		"rate_limit": cfg.RateLimitEnabled,
	}).Info("🚀 HTTP server starting")
	log.Infof("🌐 Event stream available at ws://localhost:%s/ws/events", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("HTTP server stopped")
	}
}
