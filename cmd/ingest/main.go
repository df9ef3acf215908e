// Command ingest is the Pitchside data CLI.
//
// Usage:
//
//	pitchside-ingest migrate
//	pitchside-ingest sync
//	pitchside-ingest seed players
//	pitchside-ingest seed cards --user 1234 --count 5 --rarity rare
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/pitchside/internal/cache"
	"github.com/albapepper/pitchside/internal/cards"
	"github.com/albapepper/pitchside/internal/config"
	"github.com/albapepper/pitchside/internal/db"
	"github.com/albapepper/pitchside/internal/listener"
	"github.com/albapepper/pitchside/internal/provider/fpl"
	"github.com/albapepper/pitchside/internal/seed"
	"github.com/albapepper/pitchside/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "pitchside-ingest",
		Short:        "Pitchside data CLI",
		SilenceUsage: true,
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(seedCmd())

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
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(true, func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				start := time.Now()
				if err := pool.Migrate(ctx); err != nil {
					return err
				}
				logger.Info("Schema applied", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refetch FPL bootstrap and fixtures into the shared cache",
		Long: "Refetches FPL bootstrap and fixtures. With CACHE_BACKEND=redis the " +
			"results land in the cache the API replicas read from.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.LoadForCLI()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var shared cache.Store = cache.NewMemory(true)
			if cfg.CacheBackend == "redis" {
				r, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
				if err != nil {
					return err
				}
				shared = r
			}
			defer shared.Close()

			client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, shared, logger)
			start := time.Now()
			if err := client.Warm(ctx); err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			boot, err := client.Bootstrap(ctx)
			if err != nil {
				return err
			}
			fixtures, err := client.Fixtures(ctx)
			if err != nil {
				return err
			}
			logger.Info("Sync finished",
				"backend", cfg.CacheBackend,
				"teams", len(boot.Teams), "players", len(boot.Elements), "fixtures", len(fixtures),
				"duration", time.Since(start).Round(time.Millisecond))

			// Servers on the memory backend keep their own copy; ask them to refetch.
			if cfg.HasDatabase() {
				cfg.SkipPrepare = true
				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()
				notify(ctx, pool, listener.Event{Source: listener.SourceSync, Count: len(fixtures)})
			}
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the card catalogue and starter cards",
	}
	cmd.AddCommand(seedPlayersCmd())
	cmd.AddCommand(seedCardsCmd())
	return cmd
}

func seedPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Upsert teams and players from the FPL bootstrap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(false, func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, nil, logger)
				boot, err := client.Bootstrap(ctx)
				if err != nil {
					return fmt.Errorf("fetch bootstrap: %w", err)
				}

				start := time.Now()
				result := seed.SeedPlayers(ctx, store.NewPostgres(pool.Pool), boot, logger)
				logger.Info("Player seed finished", "duration", time.Since(start).Round(time.Second), "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				notify(ctx, pool, listener.Event{Source: listener.SourceSeedPlayers, Count: result.PlayersUpserted})
				return nil
			})
		},
	}
}

func seedCardsCmd() *cobra.Command {
	var (
		userID    string
		count     int
		rarity    string
		maxSupply int
	)
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Mint cards of the top-scoring players for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			r := cards.Rarity(rarity)
			if !r.Valid() {
				return fmt.Errorf("--rarity must be one of %v", cards.Rarities)
			}
			return runDB(false, func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				client := fpl.NewClient(cfg.FPLBaseURL, cfg.FPLRequestsPerMinute, nil, logger)
				players, err := client.Players(ctx)
				if err != nil {
					return fmt.Errorf("fetch players: %w", err)
				}

				repo := store.NewPostgres(pool.Pool)
				if err := repo.UpsertUser(ctx, store.User{ID: userID}); err != nil {
					return fmt.Errorf("ensure user: %w", err)
				}

				result := seed.SeedCards(ctx, repo, userID, players, count, r, maxSupply, logger)
				logger.Info("Card seed finished", "user_id", userID, "rarity", r, "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Warn("mint skipped", "error", e)
				}
				notify(ctx, pool, listener.Event{Source: listener.SourceSeedCards, UserID: userID, Count: result.CardsMinted})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID to receive the cards")
	cmd.Flags().IntVar(&count, "count", 5, "Number of cards to mint")
	cmd.Flags().StringVar(&rarity, "rarity", string(cards.Common), "Rarity (common, rare, unique, legendary)")
	cmd.Flags().IntVar(&maxSupply, "max-supply", 0, "Mint cap per player; 0 uses the rarity default")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runDB handles config loading, DB connection, and context cancellation.
// skipPrepare connects without registering prepared statements, for
// commands that run before the schema exists.
func runDB(skipPrepare bool, fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.LoadForCLI()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	cfg.SkipPrepare = skipPrepare

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

// notify tells running API servers about a catalogue change. Failure is
// logged; the seed itself already succeeded.
func notify(ctx context.Context, pool *db.Pool, event listener.Event) {
	if err := listener.Publish(ctx, pool.Pool, event); err != nil {
		logger.Warn("Failed to publish catalogue event", "source", event.Source, "error", err)
	}
}
