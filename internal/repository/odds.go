package repository

import (
	"context"
	"fmt"

	"scoreline/server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// QuoteRepository handles odds quote database operations. Quotes are
// append-only snapshots; the latest row per bookmaker is the live line.
type QuoteRepository struct {
	db *Database
}

// Insert records a new odds snapshot
func (r *QuoteRepository) Insert(ctx context.Context, quote *models.Quote) error {
	query := `
		INSERT INTO quotes (
			game_id, bookmaker, home_spread, total, home_moneyline, away_moneyline, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		quote.GameID, quote.Bookmaker,
		quote.HomeSpread, quote.Total, quote.HomeMoneyline, quote.AwayMoneyline,
		quote.FetchedAt,
	).Scan(&quote.ID, &quote.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	log.Debug().
		Int("id", quote.ID).
		Int("game_id", quote.GameID).
		Str("bookmaker", quote.Bookmaker).
		Msg("Quote inserted")

	return nil
}

// GetLatestForGame retrieves the most recent quote per bookmaker for a game
func (r *QuoteRepository) GetLatestForGame(ctx context.Context, gameID int) ([]*models.Quote, error) {
	query := `
		SELECT DISTINCT ON (bookmaker)
		       id, game_id, bookmaker, home_spread, total, home_moneyline, away_moneyline,
		       fetched_at, created_at
		FROM quotes
		WHERE game_id = $1
		ORDER BY bookmaker, fetched_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		var quote models.Quote
		err := rows.Scan(
			&quote.ID, &quote.GameID, &quote.Bookmaker,
			&quote.HomeSpread, &quote.Total, &quote.HomeMoneyline, &quote.AwayMoneyline,
			&quote.FetchedAt, &quote.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, &quote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return quotes, nil
}

// GetLatestLine retrieves the live market line for a game from the preferred
// bookmaker, falling back to the freshest quote from any book. Returns
// (nil, nil) when no book has quoted the game.
func (r *QuoteRepository) GetLatestLine(ctx context.Context, gameID int, preferredBook string) (*models.MarketLine, error) {
	query := `
		SELECT id, game_id, bookmaker, home_spread, total, home_moneyline, away_moneyline,
		       fetched_at, created_at
		FROM quotes
		WHERE game_id = $1
		ORDER BY (bookmaker = $2) DESC, fetched_at DESC
		LIMIT 1
	`

	var quote models.Quote
	err := r.db.Pool.QueryRow(ctx, query, gameID, preferredBook).Scan(
		&quote.ID, &quote.GameID, &quote.Bookmaker,
		&quote.HomeSpread, &quote.Total, &quote.HomeMoneyline, &quote.AwayMoneyline,
		&quote.FetchedAt, &quote.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest line: %w", err)
	}

	return quote.ToMarketLine(), nil
}

// Count returns the total number of quotes
func (r *QuoteRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM quotes`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	return count, nil
}
