package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"scoreline/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamStore struct {
	teams map[int]*models.Team
	calls int
}

func (f *fakeTeamStore) GetByID(ctx context.Context, id int) (*models.Team, error) {
	f.calls++
	team, ok := f.teams[id]
	if !ok {
		return nil, fmt.Errorf("team not found: id=%d", id)
	}
	return team, nil
}

type fakeGameStore struct {
	finals   map[int][]*models.Game // keyed by team ID, newest first
	meetings []*models.Game
}

func (f *fakeGameStore) GetRecentFinalsForTeam(ctx context.Context, teamID, limit int) ([]*models.Game, error) {
	games := f.finals[teamID]
	if len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (f *fakeGameStore) GetLastFinalBefore(ctx context.Context, teamID int, before time.Time) (*models.Game, error) {
	for _, g := range f.finals[teamID] {
		if g.GameDate.Before(before) {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeGameStore) CountFinalsSince(ctx context.Context, teamID int, since, until time.Time) (int, error) {
	count := 0
	for _, g := range f.finals[teamID] {
		if !g.GameDate.Before(since) && g.GameDate.Before(until) {
			count++
		}
	}
	return count, nil
}

func (f *fakeGameStore) GetHeadToHead(ctx context.Context, teamA, teamB, limit int) ([]*models.Game, error) {
	return f.meetings, nil
}

type fakeLineStore struct {
	lines map[int][]*models.ClosingLine
}

func (f *fakeLineStore) GetRecentForTeam(ctx context.Context, teamID, limit int) ([]*models.ClosingLine, error) {
	return f.lines[teamID], nil
}

type fakeInjurySource struct {
	entries []models.InjuryEntry
	err     error
}

func (f *fakeInjurySource) InjuriesForTeam(ctx context.Context, sport models.Sport, teamID int) ([]models.InjuryEntry, error) {
	return f.entries, f.err
}

type memoryStore struct {
	entries map[string][]byte
	sets    int
}

func (m *memoryStore) Get(ctx context.Context, namespace, key string, dest interface{}) (bool, error) {
	raw, ok := m.entries[namespace+":"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryStore) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[namespace+":"+key] = raw
	m.sets++
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, namespace, key string) error {
	delete(m.entries, namespace+":"+key)
	return nil
}

func finalAt(gameID int, homeID, awayID int, date time.Time, homeScore, awayScore int) *models.Game {
	return &models.Game{
		GameID:     gameID,
		Sport:      "nba",
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		GameDate:   date,
		Status:     "Final",
		HomeScore:  sql.NullInt32{Int32: int32(homeScore), Valid: true},
		AwayScore:  sql.NullInt32{Int32: int32(awayScore), Valid: true},
	}
}

func testBuilder(teams *fakeTeamStore, games *fakeGameStore, lines *fakeLineStore, injuries InjurySource) *Builder {
	return NewBuilder(teams, games, lines, injuries, nil, time.Minute)
}

var gameTime = time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC)

func defaultTeam() *models.Team {
	return &models.Team{
		ID:                   1,
		TeamID:               101,
		Sport:                "nba",
		Name:                 "Celtics",
		PointsForPerGame:     117.3,
		PointsAgainstPerGame: 109.8,
	}
}

func TestBuildTeamSnapshot_Assembly(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	games := &fakeGameStore{finals: map[int][]*models.Game{1: {
		finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -2), 112, 104),
		finalAt(9002, 3, 1, gameTime.AddDate(0, 0, -4), 108, 110),
	}}}
	lines := &fakeLineStore{}

	b := testBuilder(teams, games, lines, nil)
	ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
	require.NoError(t, err)

	assert.Equal(t, "Celtics", ts.Name)
	assert.InDelta(t, 7.5, ts.PointDifferential, 1e-9)
	assert.True(t, ts.Home)

	require.Len(t, ts.RecentGames, 2)
	assert.Equal(t, 112, ts.RecentGames[0].TeamScore, "Home game from team's perspective")
	assert.True(t, ts.RecentGames[0].Home)
	assert.Equal(t, 110, ts.RecentGames[1].TeamScore, "Road game flips perspective")
	assert.False(t, ts.RecentGames[1].Home)
	assert.True(t, ts.RecentGames[1].Won)
}

func TestBuildTeamSnapshot_RealRecordsFromClosingLines(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	games := &fakeGameStore{finals: map[int][]*models.Game{1: {
		finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -2), 112, 104),
	}}}
	lines := &fakeLineStore{lines: map[int][]*models.ClosingLine{1: {
		// Home, won by 8 laying 3.5: cover; total 216 under 220
		{GameID: 9001, HomeTeamID: 1, AwayTeamID: 2, HomeSpread: -3.5, Total: 220, HomeScore: 112, AwayScore: 104},
		// Away, lost by 2 getting 6: cover; total 218 over 215.5
		{GameID: 9002, HomeTeamID: 3, AwayTeamID: 1, HomeSpread: -6, Total: 215.5, HomeScore: 110, AwayScore: 108},
		// Home, won by 4 laying 4: push; total 224 push
		{GameID: 9003, HomeTeamID: 1, AwayTeamID: 4, HomeSpread: -4, Total: 224, HomeScore: 114, AwayScore: 110},
	}}}

	b := testBuilder(teams, games, lines, nil)
	ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
	require.NoError(t, err)

	require.NotNil(t, ts.ATS)
	assert.Equal(t, models.RecordReal, ts.ATS.Source)
	assert.False(t, ts.ATS.IsSimulated())
	assert.Equal(t, 2, ts.ATS.Wins)
	assert.Equal(t, 0, ts.ATS.Losses)
	assert.Equal(t, 1, ts.ATS.Pushes)
	assert.Equal(t, 1, ts.ATS.HomeWins)
	assert.Equal(t, 1, ts.ATS.AwayWins)
	assert.Equal(t,
		[]models.CoverOutcome{models.CoverWin, models.CoverWin, models.CoverPush},
		ts.ATS.LastTen)

	require.NotNil(t, ts.Totals)
	assert.Equal(t, models.RecordReal, ts.Totals.Source)
	assert.Equal(t, 1, ts.Totals.Overs)
	assert.Equal(t, 1, ts.Totals.Unders)
	assert.Equal(t, 1, ts.Totals.Pushes)
	assert.InDelta(t, (216.0+218.0+224.0)/3, ts.Totals.AvgTotalPoints, 1e-9)
}

func TestBuildTeamSnapshot_SimulatedFallback(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	games := &fakeGameStore{finals: map[int][]*models.Game{1: {
		finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -2), 115, 105),
	}}}
	lines := &fakeLineStore{} // no closing line history

	b := testBuilder(teams, games, lines, nil)
	ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
	require.NoError(t, err)

	require.NotNil(t, ts.ATS)
	assert.Equal(t, models.RecordSimulated, ts.ATS.Source)
	assert.True(t, ts.ATS.IsSimulated())
	assert.Equal(t, 1, ts.ATS.Wins, "Won by 10 laying the flat 3")

	require.NotNil(t, ts.Totals)
	assert.True(t, ts.Totals.IsSimulated())
}

func TestBuildTeamSnapshot_Rest(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	lines := &fakeLineStore{}

	t.Run("back to back with dense schedule", func(t *testing.T) {
		games := &fakeGameStore{finals: map[int][]*models.Game{1: {
			finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -1), 110, 100),
			finalAt(9002, 1, 3, gameTime.AddDate(0, 0, -3), 110, 100),
			finalAt(9003, 1, 4, gameTime.AddDate(0, 0, -5), 110, 100),
			finalAt(9004, 1, 5, gameTime.AddDate(0, 0, -9), 110, 100),
		}}}

		b := testBuilder(teams, games, lines, nil)
		ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
		require.NoError(t, err)

		require.NotNil(t, ts.Rest)
		assert.Equal(t, 1, ts.Rest.DaysOfRest)
		assert.True(t, ts.Rest.BackToBack)
		assert.Equal(t, 3, ts.Rest.GamesLast7)
		assert.Equal(t, 4, ts.Rest.GamesLast14)
	})

	t.Run("well rested", func(t *testing.T) {
		games := &fakeGameStore{finals: map[int][]*models.Game{1: {
			finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -4), 110, 100),
		}}}

		b := testBuilder(teams, games, lines, nil)
		ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
		require.NoError(t, err)

		require.NotNil(t, ts.Rest)
		assert.Equal(t, 4, ts.Rest.DaysOfRest)
		assert.False(t, ts.Rest.BackToBack)
	})

	t.Run("no history means no rest snapshot", func(t *testing.T) {
		games := &fakeGameStore{}

		b := testBuilder(teams, games, lines, nil)
		ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
		require.NoError(t, err)

		assert.Nil(t, ts.Rest)
		assert.Empty(t, ts.RecentGames)
	})
}

func TestBuildTeamSnapshot_Injuries(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	games := &fakeGameStore{}
	lines := &fakeLineStore{}

	t.Run("attached from source", func(t *testing.T) {
		injuries := &fakeInjurySource{entries: []models.InjuryEntry{
			{Player: "J. Brown", Status: models.InjuryOut},
			{Player: "D. White", Status: models.InjuryQuestionable},
		}}

		b := testBuilder(teams, games, lines, injuries)
		ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
		require.NoError(t, err)

		require.Len(t, ts.Injuries, 2)
		assert.Equal(t, 1, ts.OutTierInjuries())
	})

	t.Run("source failure is tolerated", func(t *testing.T) {
		injuries := &fakeInjurySource{err: fmt.Errorf("feed down")}

		b := testBuilder(teams, games, lines, injuries)
		ts, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
		require.NoError(t, err, "Predictions proceed without an injury report")
		assert.Empty(t, ts.Injuries)
	})
}

func TestBuildTeamSnapshot_CacheRoundTrip(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	games := &fakeGameStore{finals: map[int][]*models.Game{1: {
		finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -2), 112, 104),
	}}}
	lines := &fakeLineStore{}
	store := &memoryStore{}

	b := NewBuilder(teams, games, lines, nil, store, time.Minute)

	first, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
	require.NoError(t, err)
	assert.Equal(t, 1, store.sets)
	assert.Equal(t, 1, teams.calls)

	second, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 1, gameTime, true)
	require.NoError(t, err)
	assert.Equal(t, 1, teams.calls, "Cache hit must not touch the stores")
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, len(first.RecentGames), len(second.RecentGames))
}

func TestBuildTeamSnapshot_UnknownTeam(t *testing.T) {
	b := testBuilder(&fakeTeamStore{}, &fakeGameStore{}, &fakeLineStore{}, nil)

	_, err := b.BuildTeamSnapshot(context.Background(), models.SportNBA, 42, gameTime, true)
	assert.Error(t, err)
}

func TestBuildHeadToHead(t *testing.T) {
	teams := &fakeTeamStore{teams: map[int]*models.Team{1: defaultTeam()}}
	lines := &fakeLineStore{}

	t.Run("counts from home perspective", func(t *testing.T) {
		games := &fakeGameStore{meetings: []*models.Game{
			finalAt(9001, 1, 2, gameTime.AddDate(0, 0, -30), 110, 100), // team 1 won
			finalAt(9002, 2, 1, gameTime.AddDate(0, 0, -60), 108, 112), // team 1 won on the road
			finalAt(9003, 1, 2, gameTime.AddDate(0, -3, 0), 95, 99),    // team 2 won
		}}

		b := testBuilder(teams, games, lines, nil)
		h2h, err := b.BuildHeadToHead(context.Background(), 1, 2)
		require.NoError(t, err)

		require.NotNil(t, h2h)
		assert.Equal(t, 3, h2h.Games)
		assert.Equal(t, 2, h2h.HomeWins)
		assert.Equal(t, 1, h2h.AwayWins)
	})

	t.Run("no meetings yields nil", func(t *testing.T) {
		b := testBuilder(teams, &fakeGameStore{}, lines, nil)
		h2h, err := b.BuildHeadToHead(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Nil(t, h2h)
	})
}
