package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hoopsim/internal/game/stats"
	"github.com/cory-johannsen/hoopsim/internal/game/team"
)

// TeamRepository implements team.Repository on PostgreSQL.
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository creates a TeamRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, name, abbreviation, conference, primary_color, secondary_color,
	wins, losses, home_wins, home_losses, away_wins, away_losses, streak`

const playerColumns = `id, name, number, position, year,
	shooting, defense, rebounding, passing, speed, stamina`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (*team.Team, error) {
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

func scanPlayer(row rowScanner) (team.Player, error) {
	var p team.Player
	var a stats.Attributes
	var pos, year string
	err := row.Scan(
		&p.ID, &p.Name, &p.Number, &pos, &year,
		&a.Shooting, &a.Defense, &a.Rebounding, &a.Passing, &a.Speed, &a.Stamina,
	)
	if err != nil {
		return team.Player{}, err
	}
	p.Position = team.Position(pos)
	p.Year = team.ClassYear(year)
	p.Attributes = a
	return p, nil
}

// GetTeamByID loads a team and its roster ordered by player id.
//
// Postcondition: Returns the team, or an error wrapping team.ErrTeamNotFound.
func (r *TeamRepository) GetTeamByID(ctx context.Context, id int) (*team.Team, error) {
	t, err := scanTeam(r.db.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", team.ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("querying team %d: %w", id, err)
	}
	players, err := r.loadPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Players = players
	return t, nil
}

func (r *TeamRepository) loadPlayers(ctx context.Context, teamID int) ([]team.Player, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM players WHERE team_id = $1 ORDER BY id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying players for team %d: %w", teamID, err)
	}
	defer rows.Close()

	var players []team.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating players: %w", err)
	}
	return players, nil
}

// ListTeams returns every team with its roster, ordered by id.
func (r *TeamRepository) ListTeams(ctx context.Context) ([]*team.Team, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	var teams []*team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams: %w", err)
	}

	for _, t := range teams {
		if t.Players, err = r.loadPlayers(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// UpdateTeamRecord applies one game result to the stored record.
//
// The row is locked for the read-modify-write so concurrent finishers
// cannot lose an update.
//
// Postcondition: Returns an error wrapping team.ErrTeamNotFound if id is unknown.
func (r *TeamRepository) UpdateTeamRecord(ctx context.Context, id int, won, wasHome bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t, err := scanTeam(tx.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %d", team.ErrTeamNotFound, id)
		}
		return fmt.Errorf("locking team %d: %w", id, err)
	}

	rec := t.Record.ApplyResult(won, wasHome)
	_, err = tx.Exec(ctx,
		`UPDATE teams SET wins = $2, losses = $3, home_wins = $4, home_losses = $5,
		        away_wins = $6, away_losses = $7, streak = $8
		 WHERE id = $1`,
		id, rec.Wins, rec.Losses, rec.HomeWins, rec.HomeLosses, rec.AwayWins, rec.AwayLosses, rec.Streak,
	)
	if err != nil {
		return fmt.Errorf("updating record for team %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

// UpsertTeam inserts or replaces a team and its roster.
//
// Players no longer on the roster are removed.
//
// Precondition: t must pass Validate.
func (r *TeamRepository) UpsertTeam(ctx context.Context, t *team.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec := t.Record
	_, err = tx.Exec(ctx,
		`INSERT INTO teams (`+teamColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, abbreviation = EXCLUDED.abbreviation,
		   conference = EXCLUDED.conference, primary_color = EXCLUDED.primary_color,
		   secondary_color = EXCLUDED.secondary_color, wins = EXCLUDED.wins,
		   losses = EXCLUDED.losses, home_wins = EXCLUDED.home_wins,
		   home_losses = EXCLUDED.home_losses, away_wins = EXCLUDED.away_wins,
		   away_losses = EXCLUDED.away_losses, streak = EXCLUDED.streak`,
		t.ID, t.Name, t.Abbreviation, t.Conference, t.Colors.Primary, t.Colors.Secondary,
		rec.Wins, rec.Losses, rec.HomeWins, rec.HomeLosses, rec.AwayWins, rec.AwayLosses, rec.Streak,
	)
	if err != nil {
		return fmt.Errorf("upserting team %d: %w", t.ID, err)
	}

	ids := make([]int, 0, len(t.Players))
	for _, p := range t.Players {
		ids = append(ids, p.ID)
		a := p.Attributes
		_, err = tx.Exec(ctx,
			`INSERT INTO players (team_id, `+playerColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO UPDATE SET
			   team_id = EXCLUDED.team_id, name = EXCLUDED.name, number = EXCLUDED.number,
			   position = EXCLUDED.position, year = EXCLUDED.year,
			   shooting = EXCLUDED.shooting, defense = EXCLUDED.defense,
			   rebounding = EXCLUDED.rebounding, passing = EXCLUDED.passing,
			   speed = EXCLUDED.speed, stamina = EXCLUDED.stamina`,
			t.ID, p.ID, p.Name, p.Number, string(p.Position), string(p.Year),
			a.Shooting, a.Defense, a.Rebounding, a.Passing, a.Speed, a.Stamina,
		)
		if err != nil {
			return fmt.Errorf("upserting player %d: %w", p.ID, err)
		}
	}
	if _, err = tx.Exec(ctx,
		`DELETE FROM players WHERE team_id = $1 AND NOT (id = ANY($2))`, t.ID, ids,
	); err != nil {
		return fmt.Errorf("pruning roster for team %d: %w", t.ID, err)
	}
	return tx.Commit(ctx)
}
