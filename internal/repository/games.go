package repository

import (
	"context"
	"fmt"
	"time"

	"scoreline/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `id, game_id, sport, season, home_team_id, away_team_id,
	       home_code, away_code, game_date, status,
	       home_score, away_score, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID, &game.GameID, &game.Sport, &game.Season,
		&game.HomeTeamID, &game.AwayTeamID,
		&game.HomeCode, &game.AwayCode, &game.GameDate, &game.Status,
		&game.HomeScore, &game.AwayScore, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func collectGames(rows pgx.Rows) ([]*models.Game, error) {
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// Upsert inserts or updates a game
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_id, sport, season, home_team_id, away_team_id,
			home_code, away_code, game_date, status, home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id, sport) DO UPDATE SET
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_code = EXCLUDED.home_code,
			away_code = EXCLUDED.away_code,
			game_date = EXCLUDED.game_date,
			status = EXCLUDED.status,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.Sport, game.Season, game.HomeTeamID, game.AwayTeamID,
		game.HomeCode, game.AwayCode, game.GameDate, game.Status,
		game.HomeScore, game.AwayScore,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its database ID
func (r *GameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByGameID retrieves a game by its feed GameID within a sport
func (r *GameRepository) GetByGameID(ctx context.Context, sport models.Sport, gameID int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE sport = $1 AND game_id = $2`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, string(sport), gameID))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: sport=%s game_id=%d", sport, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetUpcoming retrieves scheduled games in a sport ordered by tip-off
func (r *GameRepository) GetUpcoming(ctx context.Context, sport models.Sport, limit int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND status = 'Scheduled' AND game_date >= NOW()
		ORDER BY game_date
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, string(sport), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming games: %w", err)
	}

	games, err := collectGames(rows)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("sport", string(sport)).Int("count", len(games)).Msg("Retrieved upcoming games")
	return games, nil
}

// GetByDate retrieves games in a sport on a calendar day (UTC)
func (r *GameRepository) GetByDate(ctx context.Context, sport models.Sport, day time.Time) ([]*models.Game, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1 AND game_date >= $2 AND game_date < $3
		ORDER BY game_date
	`

	rows, err := r.db.Pool.Query(ctx, query, string(sport), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get games by date: %w", err)
	}

	return collectGames(rows)
}

// GetRecentFinalsForTeam retrieves a team's most recent completed games,
// newest first. The limit caps the lookback window.
func (r *GameRepository) GetRecentFinalsForTeam(ctx context.Context, teamID, limit int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND status = 'Final'
		  AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY game_date DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent finals: %w", err)
	}

	return collectGames(rows)
}

// GetLastFinalBefore retrieves the team's most recent completed game before
// the given time, for computing days of rest. Returns (nil, nil) if the team
// has not played yet.
func (r *GameRepository) GetLastFinalBefore(ctx context.Context, teamID int, before time.Time) (*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND status = 'Final'
		  AND game_date < $2
		ORDER BY game_date DESC
		LIMIT 1
	`

	game, err := scanGame(r.db.Pool.QueryRow(ctx, query, teamID, before))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last final: %w", err)
	}

	return game, nil
}

// CountFinalsSince counts a team's completed games in the window
// [since, until), for schedule density.
func (r *GameRepository) CountFinalsSince(ctx context.Context, teamID int, since, until time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1)
		  AND status = 'Final'
		  AND game_date >= $2 AND game_date < $3
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, teamID, since, until).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count finals: %w", err)
	}

	return count, nil
}

// GetHeadToHead retrieves completed meetings between two teams, newest first.
// Both orderings of home/away count as a meeting.
func (r *GameRepository) GetHeadToHead(ctx context.Context, teamA, teamB, limit int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'Final'
		  AND home_score IS NOT NULL AND away_score IS NOT NULL
		  AND ((home_team_id = $1 AND away_team_id = $2)
		    OR (home_team_id = $2 AND away_team_id = $1))
		ORDER BY game_date DESC
		LIMIT $3
	`

	rows, err := r.db.Pool.Query(ctx, query, teamA, teamB, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get head-to-head games: %w", err)
	}

	return collectGames(rows)
}

// UpdateScore records a final or in-progress score for a game
func (r *GameRepository) UpdateScore(ctx context.Context, sport models.Sport, gameID, homeScore, awayScore int, status string) error {
	query := `
		UPDATE games
		SET home_score = $1, away_score = $2, status = $3, updated_at = NOW()
		WHERE sport = $4 AND game_id = $5
	`

	result, err := r.db.Pool.Exec(ctx, query, homeScore, awayScore, status, string(sport), gameID)
	if err != nil {
		return fmt.Errorf("failed to update game score: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game not found: sport=%s game_id=%d", sport, gameID)
	}

	return nil
}

// Count returns the total number of games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
