// Package main provides the game server binary that runs simulated games
// behind an HTTP and websocket API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/api"
	"github.com/cory-johannsen/hoopsim/internal/cache"
	"github.com/cory-johannsen/hoopsim/internal/config"
	"github.com/cory-johannsen/hoopsim/internal/game/random"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
	"github.com/cory-johannsen/hoopsim/internal/observability"
	"github.com/cory-johannsen/hoopsim/internal/scripting"
	"github.com/cory-johannsen/hoopsim/internal/server"
	"github.com/cory-johannsen/hoopsim/internal/storage/postgres"
	"github.com/cory-johannsen/hoopsim/internal/storage/sqlite"
)

type storage struct {
	teams   team.Repository
	results gameserver.ResultStore
	check   api.HealthCheck
	close   func()
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("http_addr", cfg.Server.Addr()),
		zap.String("storage", cfg.Storage.Driver),
	)

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer store.close()

	checks := map[string]api.HealthCheck{}
	if store.check != nil {
		checks[cfg.Storage.Driver] = store.check
	}

	logger.Info("simulation settings",
		zap.Int("quarter_length", cfg.Simulation.Settings.QuarterLength),
		zap.Int("game_speed", cfg.Simulation.Settings.GameSpeed),
		zap.String("difficulty", string(cfg.Simulation.Settings.Difficulty)),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
	)

	hub := api.NewHub(logger)
	sinks := []gameserver.Sink{hub}

	if cfg.Redis.Enabled {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("parsing redis url", zap.Error(err))
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
		logger.Info("redis connected", zap.String("addr", redisOpts.Addr))
		sinks = append(sinks, cache.NewSnapshotWriter(redisClient, cfg.Redis.LiveTTL, cfg.Redis.FinalTTL))
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	opts := gameserver.Options{
		TickInterval: cfg.Simulation.TickInterval,
		AutoTimeouts: cfg.Simulation.AutoTimeouts,
		Results:      store.results,
		Sinks:        sinks,
	}

	if cfg.Simulation.CoachScriptDir != "" {
		scriptMgr := scripting.NewManager(logger)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadGlobal(cfg.Simulation.CoachScriptDir, cfg.Simulation.InstructionLimit); err != nil {
			logger.Fatal("loading coach scripts", zap.Error(err))
		}
		opts.Coach = scriptMgr
	}

	sources := gameserver.DefaultSourceFactory
	if cfg.Simulation.LogDraws {
		sources = func(seed *uint64) random.Source {
			return random.NewLoggedSource(gameserver.DefaultSourceFactory(seed), logger)
		}
	}

	games := gameserver.NewManager(store.teams, cfg.Simulation.Settings, sources, opts, logger)

	router := api.NewRouter(api.Deps{
		Games:       games,
		Teams:       store.teams,
		Hub:         hub,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Checks:      checks,
	})
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)
	lifecycle.Add("games", &server.FuncService{
		StopFn: func(context.Context) error {
			games.StopAll()
			hub.Close()
			return nil
		},
	})
	lifecycle.Add("http", server.NewHTTPService(httpSrv, logger))

	logger.Info("game server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("game server stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return storage{}, fmt.Errorf("connecting to database: %w", err)
		}
		stats := pool.Stats()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int32("conns", stats.Total),
			zap.Int32("max_conns", stats.Max),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return storage{
			teams:   pool.Teams(),
			results: pool.Results(),
			check:   pool.Check,
			close:   pool.Close,
		}, nil

	case "sqlite":
		st, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return storage{}, err
		}
		if cfg.Storage.LeagueFile != "" {
			teams, err := team.LoadLeagueFromFile(cfg.Storage.LeagueFile)
			if err != nil {
				st.Close()
				return storage{}, err
			}
			n, err := st.Seed(ctx, teams)
			if err != nil {
				st.Close()
				return storage{}, err
			}
			logger.Info("sqlite store ready", zap.String("path", cfg.Storage.SQLitePath), zap.Int("seeded_teams", n))
		}
		return storage{teams: st, results: st, close: func() { _ = st.Close() }}, nil

	default:
		teams, err := team.LoadLeagueFromFile(cfg.Storage.LeagueFile)
		if err != nil {
			return storage{}, err
		}
		reg, err := team.NewRegistry(teams...)
		if err != nil {
			return storage{}, err
		}
		logger.Info("in-memory league loaded", zap.Int("teams", len(teams)))
		return storage{teams: reg, close: func() {}}, nil
	}
}
