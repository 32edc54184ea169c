package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/database"
	"github.com/foxxcyber/grocery-assistant/internal/models"
	"github.com/foxxcyber/grocery-assistant/internal/services"
)

func readInput(c *cli.Context) (string, error) {
	name := c.String("file")

	var r io.Reader
	if name == "" || name == "-" {
		r = c.App.Reader
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("failed to open recipe file: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read recipe text: %w", err)
	}
	return string(data), nil
}

func writeOutput(c *cli.Context, v any) error {
	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}

	switch strings.ToLower(c.String("format")) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", c.String("format"))
	}
}

func parseAction(c *cli.Context) error {
	text, err := readInput(c)
	if err != nil {
		return err
	}

	importer := services.NewRecipeImporter(services.NewRecipeParser(), nil, services.DefaultLanguageDetector())
	return writeOutput(c, importer.ImportText(text, services.SourceText))
}

func matchAction(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	text, err := readInput(c)
	if err != nil {
		return err
	}

	parsed := services.ParseRecipeText(text)
	if len(parsed) == 0 {
		return services.ErrNoIngredientsFound
	}

	names := make([]string, len(parsed))
	for i, ing := range parsed {
		names[i] = ing.Name
	}

	algolia := services.NewAlgoliaSearcher(services.AlgoliaConfig{
		BaseURL:   cfg.AlgoliaBaseURL,
		AppID:     cfg.AlgoliaAppID,
		APIKey:    cfg.AlgoliaAPIKey,
		Index:     cfg.AlgoliaIndex,
		RateLimit: cfg.SearchRateLimit,
		Timeout:   cfg.SearchTimeout,
	}, log)
	search := services.NewCachedSearcher(algolia, services.NewMemorySearchCache(time.Hour), log)
	matcher := services.NewIngredientMatcher(search, cfg.MatchConcurrency, log)

	matches := matcher.MatchIngredients(c.Context, names, c.Int("max"), c.Int("store"))
	matched, unmatched := services.CountMatched(matches)

	return writeOutput(c, models.MatchIngredientsResponse{
		Matches:        matches,
		MatchedCount:   matched,
		UnmatchedCount: unmatched,
	})
}

type cleanupReport struct {
	Days    int                        `json:"days" yaml:"days"`
	DryRun  bool                       `json:"dry_run" yaml:"dry_run"`
	Matched int64                      `json:"matched" yaml:"matched"`
	Deleted int64                      `json:"deleted" yaml:"deleted"`
	Purged  int                        `json:"photos_purged" yaml:"photos_purged"`
	Stats   *models.AnonymousUserStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// photoStore connects to recipe photo storage when it is configured
func photoStore(cfg *config.Config, log *zap.Logger) services.PhotoStore {
	if !cfg.StorageEnabled() {
		return nil
	}
	storage, err := services.NewStorageService(services.StorageConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		log.Warn("photo storage unavailable, photos of removed users are kept", zap.Error(err))
		return nil
	}
	return storage
}

func cleanupAction(c *cli.Context, cfg *config.Config, log *zap.Logger) error {
	days := c.Int("days")
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	db, err := database.Connect(c.Context, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	report := cleanupReport{Days: days, DryRun: c.Bool("dry-run")}

	if c.Bool("stats") {
		stats, err := db.AnonymousUserStats(c.Context)
		if err != nil {
			return fmt.Errorf("failed to load anonymous user stats: %w", err)
		}
		report.Stats = stats
	}

	if report.DryRun {
		n, err := db.CountStaleAnonymousUsers(c.Context, days)
		if err != nil {
			return fmt.Errorf("failed to count stale anonymous users: %w", err)
		}
		report.Matched = int64(n)
	} else {
		ids, err := db.CleanupStaleAnonymousUsers(c.Context, days)
		if err != nil {
			return fmt.Errorf("failed to clean up anonymous users: %w", err)
		}
		report.Matched = int64(len(ids))
		report.Deleted = int64(len(ids))

		purged, err := services.PurgeUserPhotos(c.Context, photoStore(cfg, log), ids)
		if err != nil {
			log.Warn("failed to delete photos of removed users", zap.Error(err))
		}
		report.Purged = purged
		log.Info("removed stale anonymous users", zap.Int("users", len(ids)), zap.Int("older_than_days", days))
	}

	return writeOutput(c, report)
}
