// Command linker reconciles scraped performance CSVs against canonical
// reference data and commits the results to the document store.
//
// Usage:
//
//	linker reference --teams teams.csv --seasons seasons.csv --players players.csv
//	linker link performances.csv --unmatched-out unmatched.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courtline/recordlink/internal/config"
	"github.com/courtline/recordlink/internal/csvfile"
	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/docstore/postgres"
	"github.com/courtline/recordlink/internal/match"
	"github.com/courtline/recordlink/internal/observability"
	"github.com/courtline/recordlink/internal/platform/logging"
	"github.com/courtline/recordlink/internal/platform/resilience"
	"github.com/courtline/recordlink/internal/refdata"
	"github.com/courtline/recordlink/internal/usecase"
)

func main() {
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "linker",
		Short:         "Entity resolution and batch import for scraped performance data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(referenceCmd())
	root.AddCommand(linkCmd())
	root.AddCommand(countsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func referenceCmd() *cobra.Command {
	var teamsPath, seasonsPath, playersPath string
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Import canonical reference CSVs into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg config.Config, store docstore.Store, logger *logging.Logger) error {
				if teamsPath == "" && seasonsPath == "" && playersPath == "" {
					return fmt.Errorf("at least one of --teams, --seasons, --players is required")
				}

				svc := usecase.NewReferenceService(newImportService(cfg, store, logger), logger)
				opts := usecase.ImportOptions{MaxBatchSize: cfg.MaxBatchSize}

				if teamsPath != "" {
					n, err := svc.ImportTeams(ctx, teamsPath, opts)
					if err != nil {
						return fmt.Errorf("import teams: %w", err)
					}
					logger.InfoContext(ctx, "teams imported", "count", n)
				}
				if seasonsPath != "" {
					n, err := svc.ImportSeasons(ctx, seasonsPath, opts)
					if err != nil {
						return fmt.Errorf("import seasons: %w", err)
					}
					logger.InfoContext(ctx, "seasons imported", "count", n)
				}
				if playersPath != "" {
					n, err := svc.ImportPlayers(ctx, playersPath, opts)
					if err != nil {
						return fmt.Errorf("import players: %w", err)
					}
					logger.InfoContext(ctx, "players imported", "count", n)
				}

				return nil
			})
		},
	}
	cmd.Flags().StringVar(&teamsPath, "teams", "", "Teams CSV path")
	cmd.Flags().StringVar(&seasonsPath, "seasons", "", "Seasons CSV path")
	cmd.Flags().StringVar(&playersPath, "players", "", "Players CSV path")
	return cmd
}

func linkCmd() *cobra.Command {
	var (
		unmatchedOut string
		workers      int
		compositeIDs bool
	)
	cmd := &cobra.Command{
		Use:   "link <performances.csv>",
		Short: "Link scraped performance records and import the matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg config.Config, store docstore.Store, logger *logging.Logger) error {
				records, err := csvfile.ReadPerformances(args[0])
				if err != nil {
					return fmt.Errorf("read performances: %w", err)
				}

				cache, err := refdata.Load(ctx, store)
				if err != nil {
					return fmt.Errorf("load reference data: %w", err)
				}
				logger.InfoContext(ctx, "reference data loaded",
					"teams", cache.TeamCount(),
					"seasons", cache.SeasonCount(),
					"players", cache.PlayerCount(),
				)

				if workers == 0 {
					workers = cfg.MatchWorkers
				}
				linkage, err := usecase.NewLinkageService(cache, match.NewAliasResolver(match.DefaultNBATable()), logger, usecase.LinkageOptions{
					Threshold:     cfg.MatchThreshold,
					Workers:       workers,
					ProgressEvery: cfg.ProgressEvery,
				})
				if err != nil {
					return fmt.Errorf("build linkage service: %w", err)
				}

				start := time.Now()
				report, err := linkage.LinkAll(ctx, records)
				if err != nil {
					return fmt.Errorf("link records: %w", err)
				}

				docs, err := usecase.LinkedDocuments(report.Linked(), compositeIDs)
				if err != nil {
					return fmt.Errorf("encode linked records: %w", err)
				}
				imported, err := newImportService(cfg, store, logger).ImportAll(ctx, docstore.CollectionPlayerTeamSeasons, docs, usecase.ImportOptions{MaxBatchSize: cfg.MaxBatchSize})
				if err != nil {
					return fmt.Errorf("import linked records after %d committed: %w", imported, err)
				}

				if unmatchedOut != "" {
					if err := csvfile.WriteUnmatched(unmatchedOut, report.Unmatched()); err != nil {
						return fmt.Errorf("write unmatched report: %w", err)
					}
				}

				logger.InfoContext(ctx, "link run finished",
					"processed", report.Processed,
					"matched", report.MatchedCount,
					"unmatched", report.UnmatchedCount,
					"match_rate", report.MatchRateString(),
					"imported", imported,
					"duration", time.Since(start).Round(time.Millisecond),
				)

				return nil
			})
		},
	}
	cmd.Flags().StringVar(&unmatchedOut, "unmatched-out", "unmatched.csv", "Unmatched report CSV path (empty to skip)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Matching workers (0 uses LINK_MATCH_WORKERS)")
	cmd.Flags().BoolVar(&compositeIDs, "composite-ids", false, "Use deterministic composite document ids for linked records")
	return cmd
}

func countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Print document counts per collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg config.Config, store docstore.Store, logger *logging.Logger) error {
				collections := []string{
					docstore.CollectionPlayers,
					docstore.CollectionTeams,
					docstore.CollectionSeasons,
					docstore.CollectionPlayerTeamSeasons,
				}
				for _, collection := range collections {
					count, err := store.Count(ctx, collection)
					if err != nil {
						return fmt.Errorf("count %s: %w", collection, err)
					}
					fmt.Printf("%s: %d\n", collection, count)
				}
				return nil
			})
		},
	}
}

func newImportService(cfg config.Config, store docstore.Store, logger *logging.Logger) *usecase.ImportService {
	return usecase.NewImportService(store, logger, resilience.RetryConfig{
		MaxAttempts: cfg.CommitMaxAttempts,
		Backoff:     cfg.CommitBackoff,
	})
}

// run handles config loading, logging, telemetry, and the store connection.
func run(fn func(ctx context.Context, cfg config.Config, store docstore.Store, logger *logging.Logger) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = shutdown(shutdownCtx)
	}()

	store, err := postgres.Open(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer func() { _ = store.Close() }()

	return fn(ctx, cfg, store, logger)
}
