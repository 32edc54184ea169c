package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/foxxcyber/grocery-assistant/internal/config"
	"github.com/foxxcyber/grocery-assistant/internal/logging"
)

func main() {
	godotenv.Load()

	cfg := config.Load()
	log := logging.NewWithOutput(cfg.LogLevel, cfg.Environment, os.Stderr)
	defer log.Sync()

	app := newApp(cfg, log)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *zap.Logger) *cli.App {
	return &cli.App{
		Name:  "grocerctl",
		Usage: "recipe parsing and grocery maintenance tools",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "extract ingredient names from recipe text",
				Flags: []cli.Flag{
					fileFlag(),
					formatFlag(),
				},
				Action: parseAction,
			},
			{
				Name:  "match",
				Usage: "parse recipe text and find store products for each ingredient",
				Flags: []cli.Flag{
					fileFlag(),
					formatFlag(),
					&cli.IntFlag{
						Name:  "max",
						Usage: "products per ingredient",
						Value: cfg.MatchMaxResults,
					},
					&cli.IntFlag{
						Name:  "store",
						Usage: "store number to search",
						Value: cfg.StoreNumber,
					},
				},
				Action: func(c *cli.Context) error {
					return matchAction(c, cfg, log)
				},
			},
			{
				Name:  "cleanup-anonymous",
				Usage: "delete anonymous users with no saved data",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "only users created more than this many days ago",
						Value: cfg.AnonymousRetentionDays,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "count matching users without deleting them",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "print anonymous user statistics",
					},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					return cleanupAction(c, cfg, log)
				},
			},
		},
	}
}

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "recipe text file, or - for stdin",
		Value:   "-",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "format",
		Usage: "output format: json or yaml",
		Value: "json",
	}
}
