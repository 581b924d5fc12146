package repository

import (
	"context"
	"fmt"

	"scoreline/server/internal/models"

	"github.com/rs/zerolog/log"
)

// ClosingLineRepository handles closing line database operations. A closing
// line is written once per completed game and is the source for real
// against-the-spread and totals records.
type ClosingLineRepository struct {
	db *Database
}

// Upsert records the closing spread and total for a completed game
func (r *ClosingLineRepository) Upsert(ctx context.Context, line *models.ClosingLine) error {
	query := `
		INSERT INTO closing_lines (
			game_id, home_team_id, away_team_id, game_date,
			home_spread, total, home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id) DO UPDATE SET
			home_spread = EXCLUDED.home_spread,
			total = EXCLUDED.total,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		line.GameID, line.HomeTeamID, line.AwayTeamID, line.GameDate,
		line.HomeSpread, line.Total, line.HomeScore, line.AwayScore,
	).Scan(&line.ID, &line.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert closing line: %w", err)
	}

	log.Debug().
		Int("id", line.ID).
		Int("game_id", line.GameID).
		Msg("Closing line recorded")

	return nil
}

// GetRecentForTeam retrieves closing lines for a team's most recent completed
// games, newest first
func (r *ClosingLineRepository) GetRecentForTeam(ctx context.Context, teamID, limit int) ([]*models.ClosingLine, error) {
	query := `
		SELECT id, game_id, home_team_id, away_team_id, game_date,
		       home_spread, total, home_score, away_score, created_at
		FROM closing_lines
		WHERE home_team_id = $1 OR away_team_id = $1
		ORDER BY game_date DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get closing lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.ClosingLine
	for rows.Next() {
		var line models.ClosingLine
		err := rows.Scan(
			&line.ID, &line.GameID, &line.HomeTeamID, &line.AwayTeamID, &line.GameDate,
			&line.HomeSpread, &line.Total, &line.HomeScore, &line.AwayScore,
			&line.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closing line: %w", err)
		}
		lines = append(lines, &line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closing lines: %w", err)
	}

	return lines, nil
}

// Count returns the total number of closing lines
func (r *ClosingLineRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM closing_lines`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count closing lines: %w", err)
	}

	return count, nil
}
