package engine

import (
	"testing"
	"time"

	"scoreline/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameResult(teamScore, oppScore int, home bool) models.RecentGameResult {
	return models.RecentGameResult{
		Date:          time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC),
		TeamScore:     teamScore,
		OpponentScore: oppScore,
		Won:           teamScore > oppScore,
		Home:          home,
	}
}

func repeatGames(n, teamScore, oppScore int) []models.RecentGameResult {
	games := make([]models.RecentGameResult, 0, n)
	for i := 0; i < n; i++ {
		games = append(games, gameResult(teamScore, oppScore, i%2 == 0))
	}
	return games
}

func TestComputeEfficiency_EmptyInput(t *testing.T) {
	eff := ComputeEfficiency(nil, models.SportNBA)

	assert.Equal(t, 100.0, eff.Offensive, "empty input should return the neutral baseline")
	assert.Equal(t, 100.0, eff.Defensive)
	assert.Equal(t, 0.0, eff.Net)
	assert.Equal(t, 100.0, eff.Pace)
	assert.Equal(t, 0, eff.Games)
}

func TestComputeEfficiency_LeagueAverageTeam(t *testing.T) {
	eff := ComputeEfficiency(repeatGames(5, 110, 110), models.SportNBA)

	assert.InDelta(t, 100.0, eff.Offensive, 1e-9)
	assert.InDelta(t, 100.0, eff.Defensive, 1e-9)
	assert.InDelta(t, 0.0, eff.Net, 1e-9)
	assert.InDelta(t, 100.0, eff.Pace, 1e-9)
	assert.Equal(t, 5, eff.Games)
}

func TestComputeEfficiency_StrongOffense(t *testing.T) {
	eff := ComputeEfficiency(repeatGames(5, 121, 110), models.SportNBA)

	assert.InDelta(t, 110.0, eff.Offensive, 1e-9)
	assert.InDelta(t, 100.0, eff.Defensive, 1e-9)
	assert.InDelta(t, 10.0, eff.Net, 1e-9)
}

func TestComputeEfficiency_NFLBaselines(t *testing.T) {
	eff := ComputeEfficiency(repeatGames(5, 22, 22), models.SportNFL)

	assert.InDelta(t, 100.0, eff.Offensive, 1e-9)
	assert.InDelta(t, 100.0, eff.Defensive, 1e-9)
	assert.InDelta(t, 22.0, eff.Pace, 1e-9, "NFL pace is centered at 22")
}

func TestComputeEfficiency_LookbackCapsWindow(t *testing.T) {
	games := repeatGames(10, 110, 110)
	// Beyond-lookback games must not leak into the aggregates
	games = append(games, gameResult(200, 0, true), gameResult(200, 0, false))

	eff := ComputeEfficiency(games, models.SportNBA)

	assert.InDelta(t, 100.0, eff.Offensive, 1e-9)
	assert.Equal(t, 10, eff.Games)
}

func TestComputeForm_SequenceAndStreak(t *testing.T) {
	games := []models.RecentGameResult{
		gameResult(110, 100, true),  // W
		gameResult(108, 101, false), // W
		gameResult(112, 109, true),  // W
		gameResult(99, 120, false),  // L
		gameResult(105, 100, true),  // W
		gameResult(90, 100, true),   // L (outside the 5-game window)
	}

	form := ComputeForm(games)

	assert.Equal(t, "WWWLW", form.Sequence)
	assert.Equal(t, 4, form.Wins)
	assert.Equal(t, 1, form.Losses)
	assert.InDelta(t, 0.8, form.WinPct, 1e-9)
	assert.Equal(t, 3, form.Streak, "streak counts consecutive results from the most recent game")
}

func TestComputeForm_LosingStreakIsNegative(t *testing.T) {
	games := []models.RecentGameResult{
		gameResult(90, 100, true),
		gameResult(95, 100, false),
		gameResult(99, 120, true),
		gameResult(110, 100, true),
	}

	form := ComputeForm(games)

	assert.Equal(t, -3, form.Streak)
}

func TestComputeForm_StreakRunsPastFormWindow(t *testing.T) {
	form := ComputeForm(repeatGames(7, 110, 100))
	assert.Equal(t, 7, form.Streak)
}

func TestComputeForm_Empty(t *testing.T) {
	form := ComputeForm(nil)
	assert.Equal(t, "", form.Sequence)
	assert.Equal(t, 0, form.Streak)
	assert.Equal(t, 0.0, form.WinPct)
}

func TestSimulateATS_Classification(t *testing.T) {
	games := []models.RecentGameResult{
		gameResult(110, 105, true),  // home, won by 5, laid 3: cover
		gameResult(105, 103, true),  // home, won by 2, laid 3: no cover
		gameResult(108, 105, true),  // home, won by 3, laid 3: push
		gameResult(100, 102, false), // away, lost by 2, got 3: cover
		gameResult(100, 110, false), // away, lost by 10, got 3: no cover
	}

	ats := SimulateATS(games)
	require.NotNil(t, ats)

	assert.Equal(t, models.RecordSimulated, ats.Source, "synthesized records must be tagged simulated")
	assert.True(t, ats.IsSimulated())
	assert.Equal(t, 2, ats.Wins)
	assert.Equal(t, 2, ats.Losses)
	assert.Equal(t, 1, ats.Pushes)
	assert.Equal(t, 1, ats.HomeWins)
	assert.Equal(t, 1, ats.HomeLosses)
	assert.Equal(t, 1, ats.AwayWins)
	assert.Equal(t, 1, ats.AwayLosses)
	assert.Equal(t,
		[]models.CoverOutcome{models.CoverWin, models.CoverLoss, models.CoverPush, models.CoverWin, models.CoverLoss},
		ats.LastTen)
}

func TestSimulateATS_EmptyInput(t *testing.T) {
	assert.Nil(t, SimulateATS(nil))
}

func TestSimulateTotals_Classification(t *testing.T) {
	games := []models.RecentGameResult{
		gameResult(120, 115, true),  // 235: over
		gameResult(100, 105, false), // 205: under
		gameResult(110, 110, true),  // 220: push
	}

	totals := SimulateTotals(games, models.SportNBA)
	require.NotNil(t, totals)

	assert.Equal(t, models.RecordSimulated, totals.Source)
	assert.Equal(t, 1, totals.Overs)
	assert.Equal(t, 1, totals.Unders)
	assert.Equal(t, 1, totals.Pushes)
	assert.InDelta(t, 220.0, totals.AvgTotalPoints, 1e-9)
	assert.Equal(t,
		[]models.TotalOutcome{models.TotalOver, models.TotalUnder, models.TotalPush},
		totals.LastTen)
}

func TestSimulateTotals_LastTenCapped(t *testing.T) {
	totals := SimulateTotals(repeatGames(14, 120, 115), models.SportNBA)
	require.NotNil(t, totals)

	assert.Len(t, totals.LastTen, 10)
	assert.Equal(t, 14, totals.Overs)
}
