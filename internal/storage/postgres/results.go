package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hoopsim/internal/game/team"
	"github.com/cory-johannsen/hoopsim/internal/gameserver"
)

// ErrResultExists is returned when a game's result was already archived.
var ErrResultExists = errors.New("game result already exists")

// ErrResultNotFound is returned when no result is stored for a game id.
var ErrResultNotFound = errors.New("game result not found")

// ResultRepository archives finished games.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveResult inserts r. The box score is stored as JSONB.
//
// Postcondition: Returns ErrResultExists if r.GameID is already archived.
func (r *ResultRepository) SaveResult(ctx context.Context, res gameserver.GameResult) error {
	box, err := json.Marshal(res.BoxScore)
	if err != nil {
		return fmt.Errorf("encoding box score: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO game_results
		   (game_id, home_team_id, away_team_id, home_score, away_score, periods, winner, finished_at, box_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.GameID, res.HomeTeamID, res.AwayTeamID, res.HomeScore, res.AwayScore,
		res.Periods, string(res.Winner), res.FinishedAt, box,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrResultExists
		}
		return fmt.Errorf("inserting result %s: %w", res.GameID, err)
	}
	return nil
}

// GetResult loads one archived game.
//
// Postcondition: Returns ErrResultNotFound if gameID is unknown.
func (r *ResultRepository) GetResult(ctx context.Context, gameID string) (gameserver.GameResult, error) {
	var res gameserver.GameResult
	var winner string
	var box []byte
	err := r.db.QueryRow(ctx,
		`SELECT game_id, home_team_id, away_team_id, home_score, away_score, periods, winner, finished_at, box_score
		 FROM game_results WHERE game_id = $1`, gameID,
	).Scan(&res.GameID, &res.HomeTeamID, &res.AwayTeamID, &res.HomeScore, &res.AwayScore,
		&res.Periods, &winner, &res.FinishedAt, &box)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return gameserver.GameResult{}, ErrResultNotFound
		}
		return gameserver.GameResult{}, fmt.Errorf("querying result %s: %w", gameID, err)
	}
	res.Winner = team.Side(winner)
	if err := json.Unmarshal(box, &res.BoxScore); err != nil {
		return gameserver.GameResult{}, fmt.Errorf("decoding box score: %w", err)
	}
	return res, nil
}
