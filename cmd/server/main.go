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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/database"
	"github.com/foxxcyber/grocery-assistant/internal/handlers"
	"github.com/foxxcyber/grocery-assistant/internal/logging"
	"github.com/foxxcyber/grocery-assistant/internal/middleware"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	cfg := config.Load()

	log := logging.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	cache, pgCache, closeCache := searchCache(ctx, cfg, db, log)
	defer closeCache()

	algolia := services.NewAlgoliaSearcher(services.AlgoliaConfig{
		BaseURL:   cfg.AlgoliaBaseURL,
		AppID:     cfg.AlgoliaAppID,
		APIKey:    cfg.AlgoliaAPIKey,
		Index:     cfg.AlgoliaIndex,
		RateLimit: cfg.SearchRateLimit,
		Timeout:   cfg.SearchTimeout,
	}, log)
	search := services.NewCachedSearcher(algolia, cache, log)

	importer := services.NewRecipeImporter(
		services.NewRecipeParser(),
		services.NewRecipeFetcher(cfg.RecipeFetchTimeout, log),
		services.DefaultLanguageDetector(),
	)

	svc := handlers.Services{
		Search:   search,
		Matcher:  services.NewIngredientMatcher(search, cfg.MatchConcurrency, log),
		Importer: importer,
	}

	if cfg.OCREnabled {
		ocr, err := services.NewOCRService()
		if err != nil {
			log.Warn("OCR unavailable, photo import disabled", zap.Error(err))
		} else {
			defer ocr.Close()
			svc.OCR = ocr
			log.Info("recipe photo import enabled")
		}
	}

	if cfg.StorageEnabled() {
		storage, err := services.NewStorageService(services.StorageConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		switch {
		case err != nil:
			log.Warn("failed to initialize storage service", zap.Error(err))
		default:
			if err := storage.EnsureBucket(ctx); err != nil {
				log.Warn("failed to ensure S3 bucket exists", zap.String("bucket", cfg.S3Bucket), zap.Error(err))
			} else {
				svc.Photos = storage
				log.Info("recipe photo storage enabled", zap.String("bucket", cfg.S3Bucket))
			}
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.AnonymousIDHeader,
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: middleware.AnonymousIDHeader,
	}))

	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		app.Use("/api", middleware.RateLimit(limiter, log))
	}

	h := handlers.New(db, cfg, log, svc)
	h.RegisterRoutes(app, db)

	go runMaintenance(ctx, cfg, db, pgCache, svc.Photos, limiter, log)

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.Bool("ocr", svc.OCR != nil),
			zap.Bool("photo_storage", svc.Photos != nil),
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// searchCache prefers Redis when configured and falls back to the
// search_cache table
func searchCache(ctx context.Context, cfg *config.Config, db *database.DB, log *zap.Logger) (services.SearchCache, *database.SearchCache, func()) {
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisSearchCache(ctx, cfg.RedisURL, cfg.SearchCacheTTL)
		if err == nil {
			log.Info("search cache: redis")
			return redisCache, nil, func() { redisCache.Close() }
		}
		log.Warn("redis unavailable, using database search cache", zap.Error(err))
	}

	pgCache := database.NewSearchCache(db, cfg.SearchCacheTTL)
	log.Info("search cache: postgres")
	return pgCache, pgCache, func() {}
}

func runMaintenance(ctx context.Context, cfg *config.Config, db *database.DB, pgCache *database.SearchCache, photos services.PhotoStore, limiter *middleware.RateLimiter, log *zap.Logger) {
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	daily := time.NewTicker(24 * time.Hour)
	defer daily.Stop()

	cleanup := func() {
		if pgCache != nil {
			if n, err := pgCache.PurgeExpired(ctx); err != nil {
				log.Warn("failed to purge search cache", zap.Error(err))
			} else if n > 0 {
				log.Info("purged expired search cache rows", zap.Int64("rows", n))
			}
		}
		ids, err := db.CleanupStaleAnonymousUsers(ctx, cfg.AnonymousRetentionDays)
		if err != nil {
			log.Warn("failed to clean up anonymous users", zap.Error(err))
			return
		}
		if len(ids) == 0 {
			return
		}
		purged, err := services.PurgeUserPhotos(ctx, photos, ids)
		if err != nil {
			log.Warn("failed to delete photos of removed users", zap.Error(err))
		}
		log.Info("removed stale anonymous users",
			zap.Int("users", len(ids)),
			zap.Int("photo_owners_purged", purged),
			zap.Int("older_than_days", cfg.AnonymousRetentionDays),
		)
	}
	cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep.C:
			if limiter != nil {
				limiter.Sweep()
			}
		case <-daily.C:
			cleanup()
		}
	}
}
