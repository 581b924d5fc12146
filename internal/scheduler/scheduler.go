package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"scoreline/server/internal/alerts"
	"scoreline/server/internal/client"
	"scoreline/server/internal/config"
	"scoreline/server/internal/metrics"
	"scoreline/server/internal/models"
	"scoreline/server/internal/repository"
	"scoreline/server/internal/snapshot"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var sports = []models.Sport{models.SportNBA, models.SportNFL}

// Scheduler manages the background loops:
// - Nightly refresh of teams, schedules and closing lines
// - Periodic odds polling for upcoming games, followed by a value bet scan
type Scheduler struct {
	cfg        *config.Config
	sportsFeed *client.SportsFeed
	oddsFeed   *client.OddsFeed
	db         *repository.Database
	service    *snapshot.Service
	publisher  *alerts.Publisher
	cron       *cron.Cron
	ticker     *time.Ticker
	stopChan   chan struct{}
}

// NewScheduler creates a new scheduler instance. publisher may be nil to
// disable alerting.
func NewScheduler(cfg *config.Config, sportsFeed *client.SportsFeed, oddsFeed *client.OddsFeed, db *repository.Database, service *snapshot.Service, publisher *alerts.Publisher) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		sportsFeed: sportsFeed,
		oddsFeed:   oddsFeed,
		db:         db,
		service:    service,
		publisher:  publisher,
		cron:       cron.New(),
		stopChan:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	// Setup nightly refresh cron job
	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		if err := s.NightlyRefresh(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	// Start cron scheduler
	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	// Start odds polling ticker
	interval := time.Duration(s.cfg.OddsPollInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Odds polling started")

	go s.pollOdds(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollOdds continuously polls the odds feed and re-scans for value bets
func (s *Scheduler) pollOdds(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping odds polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping odds polling")
			return
		case <-s.ticker.C:
			if err := s.RefreshOddsAndScan(ctx); err != nil {
				log.Error().Err(err).Msg("Odds refresh failed")
			}
		}
	}
}

// NightlyRefresh pulls teams, schedules, final scores and closing lines for
// both leagues.
func (s *Scheduler) NightlyRefresh(ctx context.Context) error {
	start := time.Now()

	for _, sport := range sports {
		if err := s.refreshSport(ctx, sport); err != nil {
			metrics.RecordSync("nightly", "failure", time.Since(start).Seconds())
			return fmt.Errorf("nightly refresh for %s: %w", sport, err)
		}
	}

	teams, _ := s.db.Teams.Count(ctx)
	games, _ := s.db.Games.Count(ctx)
	quotes, _ := s.db.Quotes.Count(ctx)
	metrics.UpdateIngestionStats(int64(teams), int64(games), int64(quotes))

	metrics.RecordSync("nightly", "success", time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg("Nightly refresh complete")
	return nil
}

func (s *Scheduler) refreshSport(ctx context.Context, sport models.Sport) error {
	season, err := s.sportsFeed.FetchCurrentSeason(ctx, sport)
	if err != nil {
		return fmt.Errorf("failed to fetch current season: %w", err)
	}

	// Teams with season scoring averages
	teamInputs, err := s.sportsFeed.FetchTeams(ctx, sport, season)
	if err != nil {
		return fmt.Errorf("failed to fetch teams: %w", err)
	}

	savedTeams := 0
	for i := range teamInputs {
		team := teamInputs[i].ToTeam()
		if err := s.db.Teams.Upsert(ctx, team); err != nil {
			log.Error().Err(err).Int("team_id", team.TeamID).Msg("Failed to save team")
			continue
		}
		savedTeams++
	}
	log.Info().Str("sport", string(sport)).Int("count", savedTeams).Msg("Teams saved to database")

	// Full schedule including finals with scores
	gameInputs, err := s.sportsFeed.FetchSchedule(ctx, sport, season)
	if err != nil {
		return fmt.Errorf("failed to fetch schedule: %w", err)
	}

	savedGames := 0
	for i := range gameInputs {
		game, err := s.resolveGame(ctx, sport, &gameInputs[i])
		if err != nil {
			log.Warn().Err(err).Int("game_id", gameInputs[i].GameID).Msg("Skipping game with unknown team")
			continue
		}
		if err := s.db.Games.Upsert(ctx, game); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to save game")
			continue
		}
		savedGames++
	}
	log.Info().Str("sport", string(sport)).Int("count", savedGames).Msg("Games saved to database")

	// Closing lines for yesterday's finals feed the real spread records
	if err := s.recordClosingLines(ctx, sport, time.Now().UTC().AddDate(0, 0, -1)); err != nil {
		log.Error().Err(err).Str("sport", string(sport)).Msg("Failed to record closing lines")
	}

	return nil
}

// resolveGame maps feed team IDs onto database IDs so game rows reference the
// teams table directly.
func (s *Scheduler) resolveGame(ctx context.Context, sport models.Sport, input *models.GameInput) (*models.Game, error) {
	game := input.ToGame()

	home, err := s.db.Teams.GetByTeamID(ctx, sport, input.HomeTeamID)
	if err != nil {
		return nil, err
	}
	away, err := s.db.Teams.GetByTeamID(ctx, sport, input.AwayTeamID)
	if err != nil {
		return nil, err
	}

	game.HomeTeamID = home.ID
	game.AwayTeamID = away.ID
	return game, nil
}

// recordClosingLines stores the final pregame line for completed games on a day
func (s *Scheduler) recordClosingLines(ctx context.Context, sport models.Sport, day time.Time) error {
	quotes, err := s.oddsFeed.FetchClosingLines(ctx, sport, day)
	if err != nil {
		return err
	}

	saved := 0
	for _, q := range quotes {
		if q.HomeSpread == nil || q.Total == nil {
			continue
		}

		game, err := s.db.Games.GetByGameID(ctx, sport, q.GameID)
		if err != nil {
			log.Warn().Err(err).Int("game_id", q.GameID).Msg("Closing line for unknown game")
			continue
		}
		if !game.IsFinal() || !game.HomeScore.Valid || !game.AwayScore.Valid {
			continue
		}

		line := &models.ClosingLine{
			GameID:     game.ID,
			HomeTeamID: game.HomeTeamID,
			AwayTeamID: game.AwayTeamID,
			GameDate:   game.GameDate,
			HomeSpread: *q.HomeSpread,
			Total:      *q.Total,
			HomeScore:  int(game.HomeScore.Int32),
			AwayScore:  int(game.AwayScore.Int32),
		}
		if err := s.db.ClosingLines.Upsert(ctx, line); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to save closing line")
			continue
		}
		saved++
	}

	log.Info().Str("sport", string(sport)).Int("count", saved).Msg("Closing lines recorded")
	return nil
}

// RefreshOddsAndScan pulls fresh quotes for today's games, then re-runs the
// value bet scan over the upcoming slate and publishes alerts.
func (s *Scheduler) RefreshOddsAndScan(ctx context.Context) error {
	start := time.Now()
	today := time.Now().UTC()

	for _, sport := range sports {
		if err := s.refreshScores(ctx, sport, today); err != nil {
			log.Error().Err(err).Str("sport", string(sport)).Msg("Failed to refresh scores")
			metrics.RecordError("scheduler", "score_refresh")
		}
		if err := s.refreshOdds(ctx, sport, today); err != nil {
			log.Error().Err(err).Str("sport", string(sport)).Msg("Failed to refresh odds")
			metrics.RecordError("scheduler", "odds_refresh")
			continue
		}
		if err := s.scanForValueBets(ctx, sport); err != nil {
			log.Error().Err(err).Str("sport", string(sport)).Msg("Value bet scan failed")
			metrics.RecordError("scheduler", "value_scan")
		}
	}

	metrics.RecordSync("odds_poll", "success", time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg("Odds poll complete")
	return nil
}

// refreshScores updates final scores for today's completed games so closing
// line records and recent form stay current between nightly refreshes.
func (s *Scheduler) refreshScores(ctx context.Context, sport models.Sport, day time.Time) error {
	games, err := s.sportsFeed.FetchScoresByDate(ctx, sport, day)
	if err != nil {
		return err
	}

	updated := 0
	for i := range games {
		g := &games[i]
		if g.Status != "Final" || g.HomeScore == nil || g.AwayScore == nil {
			continue
		}
		if err := s.db.Games.UpdateScore(ctx, sport, g.GameID, *g.HomeScore, *g.AwayScore, g.Status); err != nil {
			log.Warn().Err(err).Int("game_id", g.GameID).Msg("Failed to update score")
			continue
		}
		updated++
	}

	log.Debug().Str("sport", string(sport)).Int("count", updated).Msg("Scores updated")
	return nil
}

func (s *Scheduler) refreshOdds(ctx context.Context, sport models.Sport, day time.Time) error {
	quotes, err := s.oddsFeed.FetchGameOdds(ctx, sport, day)
	if err != nil {
		return err
	}

	saved := 0
	for i := range quotes {
		game, err := s.db.Games.GetByGameID(ctx, sport, quotes[i].GameID)
		if err != nil {
			log.Debug().Int("game_id", quotes[i].GameID).Msg("Quote for unknown game, skipping")
			continue
		}

		quote := quotes[i].ToQuote(game.ID)
		if err := s.db.Quotes.Insert(ctx, quote); err != nil {
			log.Error().Err(err).Int("game_id", game.GameID).Msg("Failed to save quote")
			continue
		}
		saved++
	}

	log.Debug().Str("sport", string(sport)).Int("count", saved).Msg("Quotes saved")
	return nil
}

// scanForValueBets predicts every upcoming game and publishes any edges found
func (s *Scheduler) scanForValueBets(ctx context.Context, sport models.Sport) error {
	games, err := s.db.Games.GetUpcoming(ctx, sport, 100)
	if err != nil {
		return fmt.Errorf("failed to load upcoming games: %w", err)
	}

	var wg sync.WaitGroup
	for _, game := range games {
		wg.Add(1)
		go func(g *models.Game) {
			defer wg.Done()

			bets, pred, err := s.service.ValueBets(ctx, g)
			if err != nil {
				log.Error().Err(err).Int("game_id", g.GameID).Msg("Failed to evaluate game")
				return
			}
			if len(bets) == 0 || s.publisher == nil {
				return
			}

			if err := s.publisher.Publish(ctx, g, pred, bets); err != nil {
				log.Error().Err(err).Int("game_id", g.GameID).Msg("Failed to publish alerts")
			}
		}(game)
	}
	wg.Wait()

	return nil
}
