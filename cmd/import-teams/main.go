// Package main provides a one-shot importer that loads a league roster file
// into the configured team store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/config"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/observability"
	"github.com/cory-johannsen/hoopsim/internal/storage/postgres"
	"github.com/cory-johannsen/hoopsim/internal/storage/sqlite"
)

// upserter is the write side shared by the persistent team stores.
type upserter interface {
	UpsertTeam(ctx context.Context, t *team.Team) error
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	leaguePath := flag.String("league", "", "path to league YAML (defaults to storage.league_file)")
	flag.Parse()

	start := time.Now()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	path := *leaguePath
	if path == "" {
		path = cfg.Storage.LeagueFile
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: import-teams -config <file> -league <league.yaml>")
		os.Exit(1)
	}

	teams, err := team.LoadLeagueFromFile(path)
	if err != nil {
		logger.Fatal("loading league", zap.String("path", path), zap.Error(err))
	}

	var (
		store   upserter
		closeFn func()
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		store, closeFn = pool.Teams(), pool.Close
	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			logger.Fatal("opening sqlite store", zap.Error(err))
		}
		store, closeFn = st, func() { _ = st.Close() }
	default:
		logger.Fatal("storage driver has nothing to import into", zap.String("driver", cfg.Storage.Driver))
	}
	defer closeFn()

	players := 0
	for _, t := range teams {
		if err := store.UpsertTeam(ctx, t); err != nil {
			logger.Fatal("importing team", zap.Int("team_id", t.ID), zap.String("name", t.Name), zap.Error(err))
		}
		players += len(t.Players)
		logger.Debug("imported team", zap.Int("team_id", t.ID), zap.String("name", t.Name), zap.Int("players", len(t.Players)))
	}

	logger.Info("import complete",
		zap.String("league", path),
		zap.String("driver", cfg.Storage.Driver),
		zap.Int("teams", len(teams)),
		zap.Int("players", players),
		zap.Duration("elapsed", time.Since(start)),
	)
}
