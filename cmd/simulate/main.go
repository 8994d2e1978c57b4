// simulate plays basketball games from the command line without the HTTP server.
//
// Usage:
//
//	simulate play --home 1 --away 2     - Play one game to the final buzzer
//	simulate teams                      - List the league
//	simulate results                    - Show recently archived games (requires --db)
//
// Global flags:
//
//	--league <path>     - League YAML file
//	--db <path>         - SQLite database; seeded from --league when empty
//	--log-level <level> - Log level (default: warn)
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hoopsim/internal/config"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
	"github.com/cory-johannsen/hoopsim/internal/observability"
	"github.com/cory-johannsen/hoopsim/internal/storage/sqlite"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	leaguePath string
	dbPath     string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate college basketball games in the terminal",
		Long: `simulate runs the game engine to completion and prints the box score.

Teams come from a league YAML file, a SQLite database, or both: when --db
points at an empty database it is seeded from --league first.

Examples:
  simulate teams --league content/league.yaml
  simulate play --league content/league.yaml --home 1 --away 2 --seed 42
  simulate play --db hoops.db --league content/league.yaml --home 3 --away 4 --events
  simulate results --db hoops.db`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.leaguePath, "league", "content/league.yaml", "Path to league YAML")
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "Path to SQLite database (empty = in-memory league)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newPlayCmd(g))
	root.AddCommand(newTeamsCmd(g))
	root.AddCommand(newResultsCmd(g))
	return root
}

func (g *globals) logger() (*zap.Logger, error) {
	return observability.NewLogger(config.LoggingConfig{Level: g.logLevel, Format: "console"})
}

// league is the team source a subcommand works against.
type league struct {
	teams   team.Repository
	results gameserver.ResultStore
	store   *sqlite.Store
}

func (l league) Close() {
	if l.store != nil {
		_ = l.store.Close()
	}
}

// openLeague returns the SQLite store when --db is set, otherwise an
// in-memory registry loaded from --league.
func (g *globals) openLeague(ctx context.Context) (league, error) {
	if g.dbPath == "" {
		teams, err := team.LoadLeagueFromFile(g.leaguePath)
		if err != nil {
			return league{}, err
		}
		reg, err := team.NewRegistry(teams...)
		if err != nil {
			return league{}, err
		}
		return league{teams: reg}, nil
	}

	st, err := sqlite.Open(ctx, g.dbPath)
	if err != nil {
		return league{}, err
	}
	if g.leaguePath != "" {
		if _, statErr := os.Stat(g.leaguePath); statErr == nil {
			teams, err := team.LoadLeagueFromFile(g.leaguePath)
			if err != nil {
				_ = st.Close()
				return league{}, err
			}
			if _, err := st.Seed(ctx, teams); err != nil {
				_ = st.Close()
				return league{}, err
			}
		}
	}
	return league{teams: st, results: st, store: st}, nil
}
