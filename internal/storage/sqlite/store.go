// Package sqlite provides single-file persistence for teams and game results
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// ErrResultExists is returned when a game's result was already archived.
var ErrResultExists = errors.New("game result already exists")

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements team.Repository and gameserver.ResultStore on SQLite.
//
// The connection pool is limited to one connection, so every operation is
// serialised by database/sql.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
//
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating directory %s: %w", dir, err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: connecting: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		PRAGMA foreign_keys = ON;
		CREATE TABLE IF NOT EXISTS teams (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			abbreviation TEXT NOT NULL DEFAULT '',
			conference TEXT NOT NULL DEFAULT '',
			primary_color TEXT NOT NULL DEFAULT '',
			secondary_color TEXT NOT NULL DEFAULT '',
			wins INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			home_wins INTEGER NOT NULL DEFAULT 0,
			home_losses INTEGER NOT NULL DEFAULT 0,
			away_wins INTEGER NOT NULL DEFAULT 0,
			away_losses INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY,
			team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			number INTEGER NOT NULL,
			position TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			shooting INTEGER NOT NULL,
			defense INTEGER NOT NULL,
			rebounding INTEGER NOT NULL,
			passing INTEGER NOT NULL,
			speed INTEGER NOT NULL,
			stamina INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_players_team_id ON players(team_id);
		CREATE TABLE IF NOT EXISTS game_results (
			game_id TEXT PRIMARY KEY,
			home_team_id INTEGER NOT NULL,
			away_team_id INTEGER NOT NULL,
			home_score INTEGER NOT NULL,
			away_score INTEGER NOT NULL,
			periods INTEGER NOT NULL,
			winner TEXT NOT NULL DEFAULT '',
			finished_at TEXT NOT NULL,
			box_score TEXT NOT NULL
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const teamColumns = `id, name, abbreviation, conference, primary_color, secondary_color,
	wins, losses, home_wins, home_losses, away_wins, away_losses, streak`

const playerColumns = `id, name, number, position, year,
	shooting, defense, rebounding, passing, speed, stamina`

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanTeam(row scanner) (*team.Team, error) {
	var t team.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Abbreviation, &t.Conference, &t.Colors.Primary, &t.Colors.Secondary,
		&t.Record.Wins, &t.Record.Losses, &t.Record.HomeWins, &t.Record.HomeLosses,
		&t.Record.AwayWins, &t.Record.AwayLosses, &t.Record.Streak,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func loadPlayers(ctx context.Context, q querier, teamID int) ([]team.Player, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE team_id = ? ORDER BY id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying players for team %d: %w", teamID, err)
	}
	defer rows.Close()

	var players []team.Player
	for rows.Next() {
		var p team.Player
		var pos, year string
		a := &p.Attributes
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &pos, &year,
			&a.Shooting, &a.Defense, &a.Rebounding, &a.Passing, &a.Speed, &a.Stamina); err != nil {
			return nil, fmt.Errorf("sqlite: scanning player: %w", err)
		}
		p.Position = team.Position(pos)
		p.Year = team.ClassYear(year)
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetTeamByID implements team.Repository.
func (s *Store) GetTeamByID(ctx context.Context, id int) (*team.Team, error) {
	t, err := scanTeam(s.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", team.ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("sqlite: querying team %d: %w", id, err)
	}
	if t.Players, err = loadPlayers(ctx, s.db, id); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTeams implements team.Repository.
func (s *Store) ListTeams(ctx context.Context) ([]*team.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing teams: %w", err)
	}
	var teams []*team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range teams {
		if t.Players, err = loadPlayers(ctx, s.db, t.ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// UpdateTeamRecord implements team.Repository.
func (s *Store) UpdateTeamRecord(ctx context.Context, id int, won, wasHome bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTeam(tx.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", team.ErrTeamNotFound, id)
		}
		return fmt.Errorf("sqlite: reading team %d: %w", id, err)
	}
	rec := t.Record.ApplyResult(won, wasHome)
	if _, err := tx.ExecContext(ctx,
		`UPDATE teams SET wins = ?, losses = ?, home_wins = ?, home_losses = ?,
		        away_wins = ?, away_losses = ?, streak = ? WHERE id = ?`,
		rec.Wins, rec.Losses, rec.HomeWins, rec.HomeLosses, rec.AwayWins, rec.AwayLosses, rec.Streak, id,
	); err != nil {
		return fmt.Errorf("sqlite: updating record for team %d: %w", id, err)
	}
	return tx.Commit()
}

// UpsertTeam inserts or replaces a team and its roster.
//
// Precondition: t must pass Validate.
func (s *Store) UpsertTeam(ctx context.Context, t *team.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r := t.Record
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO teams (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name, abbreviation = excluded.abbreviation, conference = excluded.conference,
		   primary_color = excluded.primary_color, secondary_color = excluded.secondary_color,
		   wins = excluded.wins, losses = excluded.losses, home_wins = excluded.home_wins,
		   home_losses = excluded.home_losses, away_wins = excluded.away_wins,
		   away_losses = excluded.away_losses, streak = excluded.streak`,
		t.ID, t.Name, t.Abbreviation, t.Conference, t.Colors.Primary, t.Colors.Secondary,
		r.Wins, r.Losses, r.HomeWins, r.HomeLosses, r.AwayWins, r.AwayLosses, r.Streak,
	); err != nil {
		return fmt.Errorf("sqlite: upserting team %d: %w", t.ID, err)
	}

	keep := make([]string, 0, len(t.Players))
	args := []any{t.ID}
	for _, p := range t.Players {
		a := p.Attributes
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (team_id, `+playerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   team_id = excluded.team_id, name = excluded.name, number = excluded.number,
			   position = excluded.position, year = excluded.year, shooting = excluded.shooting,
			   defense = excluded.defense, rebounding = excluded.rebounding, passing = excluded.passing,
			   speed = excluded.speed, stamina = excluded.stamina`,
			t.ID, p.ID, p.Name, p.Number, string(p.Position), string(p.Year),
			a.Shooting, a.Defense, a.Rebounding, a.Passing, a.Speed, a.Stamina,
		); err != nil {
			return fmt.Errorf("sqlite: upserting player %d: %w", p.ID, err)
		}
		keep = append(keep, "?")
		args = append(args, p.ID)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM players WHERE team_id = ? AND id NOT IN (`+strings.Join(keep, ", ")+`)`, args...,
	); err != nil {
		return fmt.Errorf("sqlite: pruning roster for team %d: %w", t.ID, err)
	}
	return tx.Commit()
}

// Seed upserts teams only when the database holds none.
//
// Postcondition: Returns the number of teams written.
func (s *Store) Seed(ctx context.Context, teams []*team.Team) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting teams: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, t := range teams {
		if err := s.UpsertTeam(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(teams), nil
}

// SaveResult implements gameserver.ResultStore.
//
// Postcondition: Returns ErrResultExists if res.GameID is already archived.
func (s *Store) SaveResult(ctx context.Context, res gameserver.GameResult) error {
	box, err := json.Marshal(res.BoxScore)
	if err != nil {
		return fmt.Errorf("sqlite: encoding box score: %w", err)
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO game_results
		   (game_id, home_team_id, away_team_id, home_score, away_score, periods, winner, finished_at, box_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id) DO NOTHING`,
		res.GameID, res.HomeTeamID, res.AwayTeamID, res.HomeScore, res.AwayScore,
		res.Periods, string(res.Winner), res.FinishedAt.UTC().Format(timeLayout), string(box),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting result %s: %w", res.GameID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrResultExists
	}
	return nil
}

// RecentResults returns up to limit results, newest first.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]gameserver.GameResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, home_team_id, away_team_id, home_score, away_score, periods, winner, finished_at, box_score
		 FROM game_results ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying results: %w", err)
	}
	defer rows.Close()

	var out []gameserver.GameResult
	for rows.Next() {
		var res gameserver.GameResult
		var winner, finished, box string
		if err := rows.Scan(&res.GameID, &res.HomeTeamID, &res.AwayTeamID, &res.HomeScore, &res.AwayScore,
			&res.Periods, &winner, &finished, &box); err != nil {
			return nil, fmt.Errorf("sqlite: scanning result: %w", err)
		}
		res.Winner = team.Side(winner)
		if res.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("sqlite: parsing finished_at: %w", err)
		}
		if err := json.Unmarshal([]byte(box), &res.BoxScore); err != nil {
			return nil, fmt.Errorf("sqlite: decoding box score: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
