package snapshot

import (
	"context"
	"fmt"
	"time"

	"scoreline/server/internal/cache"
	"scoreline/server/internal/engine"
	"scoreline/server/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	recentGamesLimit  = 15
	closingLinesLimit = 15
	headToHeadLimit   = 10

	cacheNamespace = "snapshot"
)

// TeamStore is the slice of the team repository the builder needs.
type TeamStore interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

// GameStore is the slice of the game repository the builder needs.
type GameStore interface {
	GetRecentFinalsForTeam(ctx context.Context, teamID, limit int) ([]*models.Game, error)
	GetLastFinalBefore(ctx context.Context, teamID int, before time.Time) (*models.Game, error)
	CountFinalsSince(ctx context.Context, teamID int, since, until time.Time) (int, error)
	GetHeadToHead(ctx context.Context, teamA, teamB, limit int) ([]*models.Game, error)
}

// LineStore is the slice of the closing line repository the builder needs.
type LineStore interface {
	GetRecentForTeam(ctx context.Context, teamID, limit int) ([]*models.ClosingLine, error)
}

// InjurySource provides the current injury report for a team. The feed is the
// production implementation; absence of a report is (nil, nil).
type InjurySource interface {
	InjuriesForTeam(ctx context.Context, sport models.Sport, teamID int) ([]models.InjuryEntry, error)
}

// Builder assembles the per-team snapshots the prediction engine consumes.
// Closing lines drive real spread records; teams without line history get
// simulated records synthesized from raw scores.
type Builder struct {
	teams    TeamStore
	games    GameStore
	lines    LineStore
	injuries InjurySource

	cache    cache.Store
	cacheTTL time.Duration
}

// NewBuilder creates a snapshot builder. injuries may be nil; cache may be
// cache.Null{} to disable caching.
func NewBuilder(teams TeamStore, games GameStore, lines LineStore, injuries InjurySource, store cache.Store, ttl time.Duration) *Builder {
	if store == nil {
		store = cache.Null{}
	}
	return &Builder{
		teams:    teams,
		games:    games,
		lines:    lines,
		injuries: injuries,
		cache:    store,
		cacheTTL: ttl,
	}
}

// BuildTeamSnapshot assembles everything the engine needs to know about one
// team entering a game at gameTime.
func (b *Builder) BuildTeamSnapshot(ctx context.Context, sport models.Sport, teamID int, gameTime time.Time, home bool) (*models.TeamSnapshot, error) {
	cacheKey := fmt.Sprintf("%s:%d:%s:%t", sport, teamID, gameTime.UTC().Format("2006-01-02"), home)

	var cached models.TeamSnapshot
	if hit, err := b.cache.Get(ctx, cacheNamespace, cacheKey, &cached); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Snapshot cache read failed, rebuilding")
	} else if hit {
		return &cached, nil
	}

	team, err := b.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	finals, err := b.games.GetRecentFinalsForTeam(ctx, teamID, recentGamesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent games for team %d: %w", teamID, err)
	}

	recent := make([]models.RecentGameResult, 0, len(finals))
	for _, g := range finals {
		if result, ok := g.ResultFor(teamID); ok {
			recent = append(recent, result)
		}
	}

	ts := &models.TeamSnapshot{
		ID:                   team.ID,
		Name:                 team.Name,
		PointsForPerGame:     team.PointsForPerGame,
		PointsAgainstPerGame: team.PointsAgainstPerGame,
		PointDifferential:    team.PointDifferential(),
		RecentGames:          recent,
		Home:                 home,
	}

	if b.injuries != nil {
		entries, err := b.injuries.InjuriesForTeam(ctx, sport, team.TeamID)
		if err != nil {
			// Injuries are an enhancement, not a requirement
			log.Warn().Err(err).Int("team_id", teamID).Msg("Injury report unavailable, predicting without it")
		} else {
			ts.Injuries = entries
		}
	}

	if err := b.attachRecords(ctx, ts, teamID, recent, sport); err != nil {
		return nil, err
	}

	rest, err := b.buildRest(ctx, teamID, gameTime)
	if err != nil {
		return nil, err
	}
	ts.Rest = rest

	if err := ts.Validate(); err != nil {
		return nil, fmt.Errorf("assembled snapshot is invalid: %w", err)
	}

	if err := b.cache.Set(ctx, cacheNamespace, cacheKey, ts, b.cacheTTL); err != nil {
		log.Warn().Err(err).Int("team_id", teamID).Msg("Snapshot cache write failed")
	}

	return ts, nil
}

// attachRecords fills in ATS and totals summaries, preferring real closing
// line history and falling back to simulated records from raw scores.
func (b *Builder) attachRecords(ctx context.Context, ts *models.TeamSnapshot, teamID int, recent []models.RecentGameResult, sport models.Sport) error {
	lines, err := b.lines.GetRecentForTeam(ctx, teamID, closingLinesLimit)
	if err != nil {
		return fmt.Errorf("failed to load closing lines for team %d: %w", teamID, err)
	}

	if len(lines) > 0 {
		ts.ATS = realATS(lines, teamID)
		ts.Totals = realTotals(lines)
		return nil
	}

	ts.ATS = engine.SimulateATS(recent)
	ts.Totals = engine.SimulateTotals(recent, sport)
	return nil
}

// realATS builds a spread record from actual closing lines, newest first.
func realATS(lines []*models.ClosingLine, teamID int) *models.ATSSummary {
	ats := &models.ATSSummary{Source: models.RecordReal}

	for _, line := range lines {
		outcome := line.CoverFor(teamID)
		home := line.HomeTeamID == teamID

		switch outcome {
		case models.CoverWin:
			ats.Wins++
			if home {
				ats.HomeWins++
			} else {
				ats.AwayWins++
			}
		case models.CoverLoss:
			ats.Losses++
			if home {
				ats.HomeLosses++
			} else {
				ats.AwayLosses++
			}
		case models.CoverPush:
			ats.Pushes++
		}

		if len(ats.LastTen) < 10 {
			ats.LastTen = append(ats.LastTen, outcome)
		}
	}

	return ats
}

// realTotals builds an over/under record from actual closing lines.
func realTotals(lines []*models.ClosingLine) *models.TotalsSummary {
	totals := &models.TotalsSummary{Source: models.RecordReal}

	sum := 0
	for _, line := range lines {
		outcome := line.TotalOutcome()
		switch outcome {
		case models.TotalOver:
			totals.Overs++
		case models.TotalUnder:
			totals.Unders++
		case models.TotalPush:
			totals.Pushes++
		}

		sum += line.HomeScore + line.AwayScore
		if len(totals.LastTen) < 10 {
			totals.LastTen = append(totals.LastTen, outcome)
		}
	}

	if len(lines) > 0 {
		totals.AvgTotalPoints = float64(sum) / float64(len(lines))
	}

	return totals
}

// buildRest derives the rest situation entering a game at gameTime. A team
// with no prior games gets no rest snapshot at all.
func (b *Builder) buildRest(ctx context.Context, teamID int, gameTime time.Time) (*models.RestSnapshot, error) {
	last, err := b.games.GetLastFinalBefore(ctx, teamID, gameTime)
	if err != nil {
		return nil, fmt.Errorf("failed to load last game for team %d: %w", teamID, err)
	}
	if last == nil {
		return nil, nil
	}

	days := int(gameTime.Sub(last.GameDate).Hours() / 24)
	if days < 0 {
		days = 0
	}

	last7, err := b.games.CountFinalsSince(ctx, teamID, gameTime.AddDate(0, 0, -7), gameTime)
	if err != nil {
		return nil, fmt.Errorf("failed to count games last 7 days: %w", err)
	}
	last14, err := b.games.CountFinalsSince(ctx, teamID, gameTime.AddDate(0, 0, -14), gameTime)
	if err != nil {
		return nil, fmt.Errorf("failed to count games last 14 days: %w", err)
	}

	return &models.RestSnapshot{
		DaysOfRest:  days,
		BackToBack:  days <= 1,
		GamesLast7:  last7,
		GamesLast14: last14,
	}, nil
}

// BuildHeadToHead summarizes prior meetings between the two teams of a game,
// counted from the home team's perspective. No meetings yields nil.
func (b *Builder) BuildHeadToHead(ctx context.Context, homeTeamID, awayTeamID int) (*models.HeadToHead, error) {
	meetings, err := b.games.GetHeadToHead(ctx, homeTeamID, awayTeamID, headToHeadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load head-to-head history: %w", err)
	}
	if len(meetings) == 0 {
		return nil, nil
	}

	h2h := &models.HeadToHead{}
	for _, g := range meetings {
		result, ok := g.ResultFor(homeTeamID)
		if !ok {
			continue
		}
		h2h.Games++
		if result.Won {
			h2h.HomeWins++
		} else {
			h2h.AwayWins++
		}
	}

	if h2h.Games == 0 {
		return nil, nil
	}
	return h2h, nil
}
