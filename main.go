// main.go - HackMatrix API server
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sarthaklad1034/HackMatrix/cache"
	"github.com/Sarthaklad1034/HackMatrix/config"
	"github.com/Sarthaklad1034/HackMatrix/database"
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/realtime"
	"github.com/Sarthaklad1034/HackMatrix/routes"
	"github.com/Sarthaklad1034/HackMatrix/search"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/Sarthaklad1034/HackMatrix/workers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	production := cfg.IsProduction()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(cfg.Database, production)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("FATAL: seed admin: %v", err)
	}

	// Leaderboard cache
	var leaderboards services.LeaderboardCache = services.NopCache{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisLeaderboard(ctx, cfg.RedisURL, cfg.LeaderboardCacheTTL)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, leaderboard cache disabled: %v", err)
		} else {
			defer redisCache.Close()
			leaderboards = redisCache
			log.Println("✅ Leaderboard cache connected")
		}
	}

	hub := realtime.NewHub()
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)
	users := services.NewUserService(db, tokens)
	hackathons := services.NewHackathonService(db, nil, leaderboards)
	teams := services.NewTeamService(db, nil, leaderboards)
	projects := services.NewProjectService(db, nil, leaderboards)
	scoring := services.NewScoringService(db, nil, leaderboards).WithPublisher(hub)

	cleanup := services.NewCleanupService(db, nil, cfg.CleanupRetention)
	go cleanup.Start(ctx, cfg.CleanupInterval)

	// Search sync
	if cfg.SearchEnabled() {
		es, err := search.NewClient(cfg.ElasticsearchURLs)
		if err != nil {
			log.Fatalf("FATAL: elasticsearch client: %v", err)
		}
		hackathons.WithSearcher(es)

		worker := &workers.SyncWorker{
			DB:        db,
			Indexer:   es,
			Interval:  cfg.SyncInterval,
			BatchSize: cfg.SyncBatchSize,
		}
		go worker.Run(ctx)
		go worker.RetryDeadLetters(ctx)
	} else {
		log.Println("ℹ️ ELASTICSEARCH_URLS not set, search sync disabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(production),
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: !production}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(middleware.Metrics())

	deps := routes.Deps{
		DB:         db,
		Users:      users,
		Hackathons: hackathons,
		Teams:      teams,
		Projects:   projects,
		Scoring:    scoring,
		Hub:        hub,
		Cleanup:    cleanup,
	}
	if cfg.RateLimit.Enabled {
		deps.APILimiter = middleware.NewRateLimiter("api", cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		deps.AuthLimiter = middleware.NewRateLimiter("auth", cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindow)
		middleware.StartCleanup(ctx, deps.APILimiter, deps.AuthLimiter)
	}
	routes.Register(app, deps)

	go func() {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 HTTP server starting on port %s", cfg.Port)
	log.Printf("📊 Environment: %s", cfg.AppEnv)
	log.Printf("🌐 Live leaderboard at ws://localhost:%s/ws/hackathons/:id/leaderboard", cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}
