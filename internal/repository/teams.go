package repository

import (
	"context"
	"fmt"

	"scoreline/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Create inserts a new team
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, sport, code, name, city,
			points_for_per_game, points_against_per_game, games_played, wins, losses
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.Sport, team.Code, team.Name, team.City,
		team.PointsForPerGame, team.PointsAgainstPerGame,
		team.GamesPlayed, team.Wins, team.Losses,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Int("team_id", team.TeamID).
		Str("sport", team.Sport).
		Str("name", team.Name).
		Msg("Team created")

	return nil
}

// Upsert inserts or updates a team (for nightly refresh)
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, sport, code, name, city,
			points_for_per_game, points_against_per_game, games_played, wins, losses
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (team_id, sport) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			points_for_per_game = EXCLUDED.points_for_per_game,
			points_against_per_game = EXCLUDED.points_against_per_game,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.Sport, team.Code, team.Name, team.City,
		team.PointsForPerGame, team.PointsAgainstPerGame,
		team.GamesPlayed, team.Wins, team.Losses,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, team_id, sport, code, name, city,
		       points_for_per_game, points_against_per_game, games_played, wins, losses,
		       created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.TeamID, &team.Sport, &team.Code, &team.Name, &team.City,
		&team.PointsForPerGame, &team.PointsAgainstPerGame,
		&team.GamesPlayed, &team.Wins, &team.Losses,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: id=%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByTeamID retrieves a team by its feed TeamID within a sport
func (r *TeamRepository) GetByTeamID(ctx context.Context, sport models.Sport, teamID int) (*models.Team, error) {
	query := `
		SELECT id, team_id, sport, code, name, city,
		       points_for_per_game, points_against_per_game, games_played, wins, losses,
		       created_at, updated_at
		FROM teams
		WHERE sport = $1 AND team_id = $2
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, string(sport), teamID).Scan(
		&team.ID, &team.TeamID, &team.Sport, &team.Code, &team.Name, &team.City,
		&team.PointsForPerGame, &team.PointsAgainstPerGame,
		&team.GamesPlayed, &team.Wins, &team.Losses,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: sport=%s team_id=%d", sport, teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByCode retrieves a team by its code within a sport
func (r *TeamRepository) GetByCode(ctx context.Context, sport models.Sport, code string) (*models.Team, error) {
	query := `
		SELECT id, team_id, sport, code, name, city,
		       points_for_per_game, points_against_per_game, games_played, wins, losses,
		       created_at, updated_at
		FROM teams
		WHERE sport = $1 AND code = $2
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, string(sport), code).Scan(
		&team.ID, &team.TeamID, &team.Sport, &team.Code, &team.Name, &team.City,
		&team.PointsForPerGame, &team.PointsAgainstPerGame,
		&team.GamesPlayed, &team.Wins, &team.Losses,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: sport=%s code=%s", sport, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// ListBySport retrieves all teams in a sport
func (r *TeamRepository) ListBySport(ctx context.Context, sport models.Sport) ([]*models.Team, error) {
	query := `
		SELECT id, team_id, sport, code, name, city,
		       points_for_per_game, points_against_per_game, games_played, wins, losses,
		       created_at, updated_at
		FROM teams
		WHERE sport = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, string(sport))
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.TeamID, &team.Sport, &team.Code, &team.Name, &team.City,
			&team.PointsForPerGame, &team.PointsAgainstPerGame,
			&team.GamesPlayed, &team.Wins, &team.Losses,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Delete deletes a team
func (r *TeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("team not found: id=%d", id)
	}

	log.Debug().Int("id", id).Msg("Team deleted")
	return nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM teams`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
