package snapshot

import (
	"context"
	"fmt"

	"scoreline/server/internal/engine"
	"scoreline/server/internal/metrics"
	"scoreline/server/internal/models"
)

// QuoteStore is the slice of the quote repository the service needs.
type QuoteStore interface {
	GetLatestLine(ctx context.Context, gameID int, preferredBook string) (*models.MarketLine, error)
}

// Service runs the full prediction pipeline for a game: snapshots in,
// prediction and value bets out. Predictions are computed on demand and never
// persisted; only the snapshots underneath them are cached.
type Service struct {
	builder       *Builder
	quotes        QuoteStore
	preferredBook string
}

// NewService creates a prediction service
func NewService(builder *Builder, quotes QuoteStore, preferredBook string) *Service {
	return &Service{
		builder:       builder,
		quotes:        quotes,
		preferredBook: preferredBook,
	}
}

// Predict computes the model's view of a scheduled game.
func (s *Service) Predict(ctx context.Context, game *models.Game) (*models.GamePrediction, error) {
	sport := models.Sport(game.Sport)
	if !sport.Valid() {
		return nil, fmt.Errorf("unsupported sport %q", game.Sport)
	}

	home, err := s.builder.BuildTeamSnapshot(ctx, sport, game.HomeTeamID, game.GameDate, true)
	if err != nil {
		return nil, fmt.Errorf("failed to build home snapshot: %w", err)
	}
	away, err := s.builder.BuildTeamSnapshot(ctx, sport, game.AwayTeamID, game.GameDate, false)
	if err != nil {
		return nil, fmt.Errorf("failed to build away snapshot: %w", err)
	}

	h2h, err := s.builder.BuildHeadToHead(ctx, game.HomeTeamID, game.AwayTeamID)
	if err != nil {
		return nil, err
	}

	pred, err := engine.PredictGame(home, away, sport, h2h)
	if err != nil {
		return nil, fmt.Errorf("prediction failed for game %d: %w", game.GameID, err)
	}

	metrics.RecordPrediction(string(sport), string(pred.Confidence))
	return pred, nil
}

// ValueBets computes the prediction and compares it against the live market
// line. A game with no quoted markets yields an empty list.
func (s *Service) ValueBets(ctx context.Context, game *models.Game) ([]models.ValueBet, *models.GamePrediction, error) {
	pred, err := s.Predict(ctx, game)
	if err != nil {
		return nil, nil, err
	}

	line, err := s.quotes.GetLatestLine(ctx, game.ID, s.preferredBook)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load market line: %w", err)
	}

	bets := engine.FindValueBets(pred, line, game.GameID)
	for _, bet := range bets {
		metrics.RecordValueBet(game.Sport, string(bet.Market))
	}

	return bets, pred, nil
}
