package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"azure-watch/updates/internal/archive"
	"azure-watch/updates/internal/config"
	"azure-watch/updates/internal/database"
	"azure-watch/updates/internal/pipeline"
	"azure-watch/updates/internal/server"
	"azure-watch/updates/internal/source"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func usage() {
	fmt.Println("Usage: updates [command] [options]")
	fmt.Println("Commands: fetch, server")
	fmt.Println("\nFor command-specific options, use: updates [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	fetchCmd := flag.NewFlagSet("fetch", flag.ExitOnError)
	fetchCmd.StringVar(&cfg.Source, "source", cfg.Source,
		"Acquisition strategy: rss, static or rendered (env: UPDATES_SOURCE)")
	fetchCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite archive file, empty to disable archiving (env: UPDATES_DB_PATH)")
	fetchCmd.DurationVar(&cfg.Interval, "interval", cfg.Interval,
		"Interval between fetch passes, 0 for one-shot mode (env: UPDATES_INTERVAL)")
	fetchCmd.IntVar(&cfg.RetentionDays, "retention", cfg.RetentionDays,
		"Number of days to retain archived updates (env: UPDATES_RETENTION_DAYS)")

	var fetchLogLevelStr string
	fetchCmd.StringVar(&fetchLogLevelStr, "log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: UPDATES_LOG_LEVEL)")

	serverCmd := flag.NewFlagSet("server", flag.ExitOnError)
	serverCmd.StringVar(&cfg.Source, "source", cfg.Source,
		"Acquisition strategy: rss, static or rendered (env: UPDATES_SOURCE)")
	serverCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite archive file for the history endpoint (env: UPDATES_DB_PATH)")
	serverCmd.StringVar(&cfg.ServerHost, "host", cfg.ServerHost,
		"Host to bind the server to (env: UPDATES_HOST)")
	serverCmd.IntVar(&cfg.ServerPort, "port", cfg.ServerPort,
		"Port to listen on (env: UPDATES_PORT)")

	var serverLogLevelStr string
	serverCmd.StringVar(&serverLogLevelStr, "log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: UPDATES_LOG_LEVEL)")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		fetchCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(fetchLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runFetch(cfg); err != nil {
			log.Error().Err(err).Msg("Fetch failed")
			os.Exit(1)
		}

	case "server":
		serverCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(serverLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runServer(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		usage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}
}

// buildSource assembles the configured acquisition strategy.
func buildSource(cfg *config.Config) (source.Source, error) {
	client := source.NewClient(cfg.FetchTimeout, cfg.UserAgent)

	switch cfg.Source {
	case "rss":
		return source.NewRSSSource(client, cfg.FeedURL, cfg.DateFallback, cfg.Fulltext), nil
	case "static":
		return source.NewStaticSource(client, cfg.PageURL, cfg.DateFallback), nil
	case "rendered":
		extractor := source.NewStaticSource(client, cfg.PageURL, cfg.DateFallback)
		return source.NewRenderedSource(extractor, cfg.PageURL, cfg.WaitSelector, cfg.RenderTimeout, cfg.ScrollSettle), nil
	default:
		return nil, fmt.Errorf("unknown source %q (want rss, static or rendered)", cfg.Source)
	}
}

// runFetch executes fetch passes either once or periodically based on
// configuration, archiving the results when a database is configured.
func runFetch(cfg *config.Config) error {
	src, err := buildSource(cfg)
	if err != nil {
		return err
	}
	agg := pipeline.NewAggregator(src, cfg.CacheTTL, cfg.RevalidateStatus)

	var repo archive.Repository
	if cfg.DBPath != "" {
		db, err := database.NewDB(database.NewConfig(cfg.DBPath))
		if err != nil {
			return fmt.Errorf("failed to initialize archive database: %w", err)
		}
		defer db.Close()
		repo = archive.NewRepository(db)
	}

	if cfg.Interval <= 0 {
		log.Info().Msg("Running in one-shot mode")
	} else {
		log.Info().Dur("interval", cfg.Interval).Msg("Running in periodic mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if err := runFetchPass(ctx, agg, repo, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Fetch pass canceled by shutdown signal")
			return nil
		}
		return err
	}

	if cfg.Interval <= 0 {
		log.Info().Msg("One-shot fetch completed, exiting")
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.Interval).
		Time("next_run", time.Now().Add(cfg.Interval)).
		Msg("Waiting for next fetch pass")

	for {
		select {
		case <-ticker.C:
			// Each pass refetches; the cache only serves the API.
			agg.Refresh()

			if err := runFetchPass(ctx, agg, repo, cfg); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Info().Msg("Fetch pass canceled by shutdown signal")
					return nil
				}
				log.Error().Err(err).Msg("Fetch pass failed")
				// Continue to the next pass rather than exiting
			}

			log.Info().
				Time("next_run", time.Now().Add(cfg.Interval)).
				Msg("Waiting for next fetch pass")

		case <-ctx.Done():
			log.Info().Msg("Shutting down periodic fetching")
			return nil
		}
	}
}

// runFetchPass executes a single fetch, logs the outcome and archives
// the records when an archive is configured.
func runFetchPass(ctx context.Context, agg *pipeline.Aggregator, repo archive.Repository, cfg *config.Config) error {
	startTime := time.Now()
	records, err := agg.Snapshot(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("source", agg.SourceName()).
		Int("records", len(records)).
		Dur("duration", time.Since(startTime)).
		Msg("Fetch pass finished")

	if len(records) == 0 {
		log.Info().Msg("Source yielded no parsable updates")
		return nil
	}

	if repo == nil {
		return nil
	}

	saveCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	inserted, duplicates, err := repo.SaveUpdates(saveCtx, agg.SourceName(), records)
	if err != nil {
		return fmt.Errorf("failed to archive updates: %w", err)
	}
	log.Info().
		Int64("inserted", inserted).
		Int64("duplicates", duplicates).
		Msg("Archived fetch pass")

	purged, err := repo.PurgeOlderThan(saveCtx, cfg.RetentionDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge old archived updates")
	} else if purged == 0 {
		log.Debug().Msg("No archived updates needed purging")
	}

	return nil
}

// runServer starts the HTTP API server with the provided configuration.
func runServer(cfg *config.Config) error {
	src, err := buildSource(cfg)
	if err != nil {
		return err
	}
	agg := pipeline.NewAggregator(src, cfg.CacheTTL, cfg.RevalidateStatus)

	var repo archive.Repository
	if cfg.DBPath != "" {
		dbCfg := database.NewConfig(cfg.DBPath)
		dbCfg.ReadOnly = true

		db, err := database.NewDB(dbCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize archive database: %w", err)
		}
		defer db.Close()
		repo = archive.NewRepository(db)
	}

	return server.RunServer(agg, repo, cfg.ListenAddr(), log.Logger)
}
