package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scoreline/server/internal/metrics"
	"scoreline/server/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Alert is one published value bet notification
type Alert struct {
	GameID    int             `json:"game_id"`
	Sport     models.Sport    `json:"sport"`
	HomeTeam  string          `json:"home_team"`
	AwayTeam  string          `json:"away_team"`
	Bet       models.ValueBet `json:"bet"`
	CreatedAt time.Time       `json:"created_at"`
}

// Publisher pushes value bet alerts onto a capped redis list that downstream
// consumers (notifier bots, the UI feed) read from.
type Publisher struct {
	client  *redis.Client
	listKey string
	maxLen  int64
}

// NewPublisher creates an alert publisher
func NewPublisher(client *redis.Client, listKey string, maxLen int64) *Publisher {
	return &Publisher{
		client:  client,
		listKey: listKey,
		maxLen:  maxLen,
	}
}

// Publish pushes one alert per value bet. Publishing is best effort per bet;
// the first failure aborts since the list is unreachable anyway.
func (p *Publisher) Publish(ctx context.Context, game *models.Game, pred *models.GamePrediction, bets []models.ValueBet) error {
	for _, bet := range bets {
		alert := Alert{
			GameID:    game.GameID,
			Sport:     models.Sport(game.Sport),
			HomeTeam:  pred.HomeTeam,
			AwayTeam:  pred.AwayTeam,
			Bet:       bet,
			CreatedAt: time.Now().UTC(),
		}

		raw, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}

		if err := p.client.LPush(ctx, p.listKey, raw).Err(); err != nil {
			return fmt.Errorf("failed to publish alert: %w", err)
		}

		metrics.RecordAlert()
		log.Info().
			Int("game_id", game.GameID).
			Str("market", string(bet.Market)).
			Str("team", bet.Team).
			Float64("edge", bet.Edge).
			Str("confidence", string(bet.Confidence)).
			Msg("Value bet alert published")
	}

	if err := p.client.LTrim(ctx, p.listKey, 0, p.maxLen-1).Err(); err != nil {
		return fmt.Errorf("failed to trim alert list: %w", err)
	}

	return nil
}

// Recent returns the newest alerts, most recent first
func (p *Publisher) Recent(ctx context.Context, limit int64) ([]Alert, error) {
	raws, err := p.client.LRange(ctx, p.listKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}

	alerts := make([]Alert, 0, len(raws))
	for _, raw := range raws {
		var alert Alert
		if err := json.Unmarshal([]byte(raw), &alert); err != nil {
			log.Warn().Err(err).Msg("Skipping undecodable alert")
			continue
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
