// Command ingest is the Hoopscore command-line tool. It warms the Cache Store
// and prints ladders without starting the API.
//
// Usage:
//
//	hoopscore-ingest migrate
//	hoopscore-ingest warm --from 2015 --to 2024
//	hoopscore-ingest score --season 2022
//	hoopscore-ingest score --from 2018 --to 2022 --min-points 20
//	hoopscore-ingest standings --season 2022
//	hoopscore-ingest leaders --season 2022 --top 15
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/hoopscore/internal/app"
	"github.com/albapepper/hoopscore/internal/config"
	"github.com/albapepper/hoopscore/internal/db"
	"github.com/albapepper/hoopscore/internal/season"
)

// Logs go to stderr so ladders on stdout can be piped.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "hoopscore-ingest",
		Short:        "Hoopscore MVP ladder CLI",
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(warmCmd())
	root.AddCommand(scoreCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(leadersCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres fetch_cache table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Schema applied")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// warm command
// --------------------------------------------------------------------------

func warmCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Fetch every upstream record for a season range into the Cache Store",
		RunE: func(cmd *cobra.Command, args []string) error {
			seasons, err := seasonRange(from, to)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app.App) error {
				result, err := a.Ladder.Warm(ctx, seasons)
				if err != nil {
					return err
				}
				logger.Info("Warm-up finished", "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("warm error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First season (required)")
	cmd.Flags().StringVar(&to, "to", "", "Last season (default: --from)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// --------------------------------------------------------------------------
// score command
// --------------------------------------------------------------------------

func scoreCmd() *cobra.Command {
	var (
		seasonArg, from, to string
		minPoints, minEFG   string
		minGamesStarted     string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the MVP ladder for a season or a season range as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seasons []season.Season
			switch {
			case seasonArg != "":
				s, err := season.Parse(seasonArg)
				if err != nil {
					return err
				}
				seasons = []season.Season{s}
			case from != "":
				r, err := seasonRange(from, to)
				if err != nil {
					return err
				}
				seasons = r
			default:
				return fmt.Errorf("--season or --from is required")
			}

			return run(func(ctx context.Context, a *app.App) error {
				th, err := a.Ladder.ParseThresholds(minPoints, minEFG, minGamesStarted)
				if err != nil {
					return err
				}
				if len(seasons) == 1 {
					res, err := a.Ladder.Evaluate(ctx, seasons[0], th)
					if err != nil {
						return err
					}
					return printJSON(res)
				}
				batch, err := a.Ladder.EvaluateSeasons(ctx, seasons, th)
				if err != nil {
					return err
				}
				if err := printJSON(batch); err != nil {
					return err
				}
				if batch.Failed > 0 {
					return fmt.Errorf("%d of %d seasons failed", batch.Failed, batch.Requested)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&seasonArg, "season", "", "Season (2022, 2021-22 or 2021-2022)")
	cmd.Flags().StringVar(&from, "from", "", "First season of a range")
	cmd.Flags().StringVar(&to, "to", "", "Last season of a range (default: --from)")
	cmd.Flags().StringVar(&minPoints, "min-points", "", "Minimum points per game, exclusive")
	cmd.Flags().StringVar(&minEFG, "min-efg", "", "Minimum effective FG percentage, exclusive")
	cmd.Flags().StringVar(&minGamesStarted, "min-games-started", "", "Minimum games started, exclusive")
	return cmd
}

// --------------------------------------------------------------------------
// standings and leaders commands
// --------------------------------------------------------------------------

func standingsCmd() *cobra.Command {
	var seasonArg string
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print a season's ranked standings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := season.Parse(seasonArg)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app.App) error {
				teams, err := a.Ladder.Standings(ctx, s)
				if err != nil {
					return err
				}
				return printJSON(teams)
			})
		},
	}
	cmd.Flags().StringVar(&seasonArg, "season", strconv.Itoa(config.CurrentSeason), "Season")
	return cmd
}

func leadersCmd() *cobra.Command {
	var (
		seasonArg string
		top       int
	)
	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Print a season's scoring leaders from per-player game logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := season.Parse(seasonArg)
			if err != nil {
				return err
			}
			return run(func(ctx context.Context, a *app.App) error {
				leaders, err := a.Ladder.Leaders(ctx, s, top)
				if err != nil {
					return err
				}
				return printJSON(leaders)
			})
		},
	}
	cmd.Flags().StringVar(&seasonArg, "season", strconv.Itoa(config.CurrentSeason), "Season")
	cmd.Flags().IntVar(&top, "top", 10, "Number of players")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, wiring, and context cancellation.
func run(fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func seasonRange(from, to string) ([]season.Season, error) {
	start, err := season.Parse(from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	end := start
	if to != "" {
		if end, err = season.Parse(to); err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
	}
	seasons := season.Range(start, end)
	if len(seasons) == 0 {
		return nil, fmt.Errorf("--from %s is after --to %s", start.Label(), end.Label())
	}
	return seasons, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
