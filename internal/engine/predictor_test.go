package engine

import (
	"testing"

	"scoreline/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balancedHistory builds an alternating win/loss sequence whose scoring
// averages sit exactly on the league baseline, so the efficiency term is
// zero and the last-5 form term is a fixed +0.6.
func balancedHistory(n int) []models.RecentGameResult {
	games := make([]models.RecentGameResult, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			games = append(games, gameResult(112, 108, true))
		} else {
			games = append(games, gameResult(108, 112, false))
		}
	}
	return games
}

// ratedSnapshot builds a snapshot with a six-game balanced history whose
// computed power rating lands exactly on the requested value.
func ratedSnapshot(name string, rating float64) *models.TeamSnapshot {
	// rating = 100 + diff*1.5 + 0.6 (form), so solve for diff
	diff := (rating - 100.6) / 1.5
	return &models.TeamSnapshot{
		ID:                   1,
		Name:                 name,
		PointsForPerGame:     112,
		PointsAgainstPerGame: 108,
		PointDifferential:    diff,
		RecentGames:          balancedHistory(6),
	}
}

func TestRatedSnapshotHelper(t *testing.T) {
	for _, want := range []float64{100.0, 108.0, 120.0, 95.5} {
		got, err := ComputePowerRating(ratedSnapshot("X", want), models.SportNBA)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestPredictGame_PowerGapScenario(t *testing.T) {
	// 108 vs 100 power ratings, no rest issues, no head-to-head:
	// margin = 8/2 + 3.0 home court = 7.0
	home := ratedSnapshot("Home Hawks", 108.0)
	away := ratedSnapshot("Away Owls", 100.0)
	away.PointsForPerGame = 108
	away.PointsAgainstPerGame = 112

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	assert.Equal(t, 108.0, pred.HomePowerRating)
	assert.Equal(t, 100.0, pred.AwayPowerRating)
	assert.Equal(t, 8.0, pred.PowerRatingDiff)
	assert.InDelta(t, 7.0, pred.PredictedMargin, 1e-9)
	assert.Equal(t, -7.0, pred.PredictedSpread, "home favored by 7")
	assert.Equal(t, models.ConfidenceMedium, pred.Confidence, "margin >= 4 but < 8")
	assert.Equal(t, "Home Hawks", pred.PredictedWinner)
	assert.Equal(t, pred.HomeWinProbability, pred.WinProbability)
	assert.Greater(t, pred.HomeWinProbability, 50)
}

func TestPredictGame_BackToBackScenario(t *testing.T) {
	// Equal 100-rated teams, home on a back-to-back, away on four days of
	// rest: margin = 0 + 3.0 - 2.5 = 0.5, near pick'em, low confidence.
	home := &models.TeamSnapshot{
		ID: 1, Name: "Tired Home",
		PointsForPerGame: 110, PointsAgainstPerGame: 110,
		PointDifferential: 2.5 / 1.5,
		Rest:              &models.RestSnapshot{DaysOfRest: 1, BackToBack: true},
	}
	away := &models.TeamSnapshot{
		ID: 2, Name: "Fresh Away",
		PointsForPerGame: 110, PointsAgainstPerGame: 110,
		PointDifferential: -1.0 / 1.5,
		Rest:              &models.RestSnapshot{DaysOfRest: 4},
	}

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, pred.HomePowerRating)
	assert.Equal(t, 100.0, pred.AwayPowerRating)
	assert.InDelta(t, 0.5, pred.PredictedMargin, 1e-9)
	assert.Equal(t, -0.5, pred.PredictedSpread)
	assert.Equal(t, models.ConfidenceLow, pred.Confidence, "no recent games forces low")

	var b2bFactor bool
	for _, f := range pred.Factors {
		if f.Name == "Home team on back-to-back" {
			b2bFactor = true
			assert.Equal(t, -2.5, f.Points)
			assert.Equal(t, models.FavorsAway, f.Favors)
		}
		assert.NotEqual(t, "Rest advantage", f.Name,
			"rest differential must not apply when a team is on a back-to-back")
	}
	assert.True(t, b2bFactor)
}

func TestPredictGame_BothTeamsOnBackToBack(t *testing.T) {
	home := ratedSnapshot("Home", 100.0)
	away := ratedSnapshot("Away", 100.0)
	b2b := &models.RestSnapshot{DaysOfRest: 0, BackToBack: true}
	home.Rest = b2b
	away.Rest = b2b

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	// Penalties apply independently and cancel; only home court remains.
	// The back-to-back hits both power ratings equally as well.
	assert.InDelta(t, 3.0, pred.PredictedMargin, 1e-9)
}

func TestPredictGame_RestDifferential(t *testing.T) {
	home := ratedSnapshot("Rested Home", 100.0)
	away := ratedSnapshot("Grinding Away", 100.0)
	home.Rest = &models.RestSnapshot{DaysOfRest: 4}
	away.Rest = &models.RestSnapshot{DaysOfRest: 2}

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	var restFactor *models.PredictionFactor
	for i := range pred.Factors {
		if pred.Factors[i].Name == "Rest advantage" {
			restFactor = &pred.Factors[i]
		}
	}
	require.NotNil(t, restFactor)
	assert.Equal(t, 1.0, restFactor.Points) // (4-2) * 0.5
	assert.Equal(t, models.FavorsHome, restFactor.Favors)
}

func TestPredictGame_RestGapBelowThresholdSkipped(t *testing.T) {
	home := ratedSnapshot("Home", 100.0)
	away := ratedSnapshot("Away", 100.0)
	home.Rest = &models.RestSnapshot{DaysOfRest: 3}
	away.Rest = &models.RestSnapshot{DaysOfRest: 2}

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	for _, f := range pred.Factors {
		assert.NotEqual(t, "Rest advantage", f.Name)
	}
}

func TestPredictGame_HeadToHead(t *testing.T) {
	home := ratedSnapshot("Home", 100.0)
	away := ratedSnapshot("Away", 100.0)

	t.Run("gap of two or more applies", func(t *testing.T) {
		pred, err := PredictGame(home, away, models.SportNBA,
			&models.HeadToHead{HomeWins: 3, AwayWins: 0, Games: 3})
		require.NoError(t, err)
		assert.InDelta(t, 3.9, pred.PredictedMargin, 1e-9) // 3.0 home court + 3*0.3
	})

	t.Run("gap of one skipped", func(t *testing.T) {
		pred, err := PredictGame(home, away, models.SportNBA,
			&models.HeadToHead{HomeWins: 2, AwayWins: 1, Games: 3})
		require.NoError(t, err)
		assert.InDelta(t, 3.0, pred.PredictedMargin, 1e-9)
	})

	t.Run("nil history skipped", func(t *testing.T) {
		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, pred.PredictedMargin, 1e-9)
	})
}

func TestPredictGame_ProbabilitiesSumToHundred(t *testing.T) {
	cases := []struct{ homeRating, awayRating float64 }{
		{100, 100}, {108, 100}, {120, 95.5}, {95.5, 120}, {100.6, 113.5},
	}

	for _, c := range cases {
		home := ratedSnapshot("Home", c.homeRating)
		away := ratedSnapshot("Away", c.awayRating)

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)

		assert.Equal(t, 100, pred.HomeWinProbability+pred.AwayWinProbability)
		if pred.PredictedWinner == pred.HomeTeam {
			assert.Equal(t, pred.HomeWinProbability, pred.WinProbability)
		} else {
			assert.Equal(t, pred.AwayWinProbability, pred.WinProbability)
		}
	}
}

func TestPredictGame_ScoresConsistentWithSpread(t *testing.T) {
	cases := []struct{ homeRating, awayRating float64 }{
		{100, 100}, {108, 100}, {120, 95.5}, {95.5, 120},
	}

	for _, c := range cases {
		home := ratedSnapshot("Home", c.homeRating)
		away := ratedSnapshot("Away", c.awayRating)

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)

		scoreDiff := float64(pred.PredictedHomeScore - pred.PredictedAwayScore)
		assert.InDelta(t, -pred.PredictedSpread, scoreDiff, 1.0,
			"score gap and spread diverge only by independent rounding")
	}
}

func TestPredictGame_TotalPrefersTotalsSummaries(t *testing.T) {
	home := ratedSnapshot("Home", 100.0)
	away := ratedSnapshot("Away", 100.0)

	t.Run("baseline from season averages", func(t *testing.T) {
		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		assert.InDelta(t, 220.0, pred.PredictedTotal, 1e-9) // (112+108)*2/2
	})

	t.Run("summaries preferred when both present", func(t *testing.T) {
		h := ratedSnapshot("Home", 100.0)
		a := ratedSnapshot("Away", 100.0)
		h.Totals = &models.TotalsSummary{Source: models.RecordSimulated, AvgTotalPoints: 230}
		a.Totals = &models.TotalsSummary{Source: models.RecordReal, AvgTotalPoints: 240}

		pred, err := PredictGame(h, a, models.SportNBA, nil)
		require.NoError(t, err)
		assert.InDelta(t, 235.0, pred.PredictedTotal, 1e-9)
	})

	t.Run("one summary missing falls back to baseline", func(t *testing.T) {
		h := ratedSnapshot("Home", 100.0)
		a := ratedSnapshot("Away", 100.0)
		h.Totals = &models.TotalsSummary{Source: models.RecordReal, AvgTotalPoints: 250}

		pred, err := PredictGame(h, a, models.SportNBA, nil)
		require.NoError(t, err)
		assert.InDelta(t, 220.0, pred.PredictedTotal, 1e-9)
	})

	t.Run("clamped to sport bounds", func(t *testing.T) {
		h := ratedSnapshot("Home", 100.0)
		a := ratedSnapshot("Away", 100.0)
		h.Totals = &models.TotalsSummary{Source: models.RecordReal, AvgTotalPoints: 300}
		a.Totals = &models.TotalsSummary{Source: models.RecordReal, AvgTotalPoints: 310}

		pred, err := PredictGame(h, a, models.SportNBA, nil)
		require.NoError(t, err)
		assert.Equal(t, 260.0, pred.PredictedTotal)
	})
}

func TestPredictGame_ConfidenceLadder(t *testing.T) {
	t.Run("high needs wide margin and wide power gap", func(t *testing.T) {
		home := ratedSnapshot("Home", 120.0)
		away := ratedSnapshot("Away", 100.0)

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		// margin = 10 + 3 = 13, power diff = 20
		assert.Equal(t, models.ConfidenceHigh, pred.Confidence)
	})

	t.Run("sparse data forces low", func(t *testing.T) {
		home := ratedSnapshot("Home", 120.0)
		away := ratedSnapshot("Away", 100.0)
		away.RecentGames = away.RecentGames[:4]

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		assert.Equal(t, models.ConfidenceLow, pred.Confidence)
	})

	t.Run("heavy injury report caps high at medium", func(t *testing.T) {
		home := ratedSnapshot("Home", 124.5)
		away := ratedSnapshot("Away", 100.0)
		home.Injuries = []models.InjuryEntry{
			{Player: "A", Status: models.InjuryOut},
			{Player: "B", Status: models.InjuryOut},
			{Player: "C", Status: models.InjuryDoubtful},
		}

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		// Injury penalty drops home to 120.0; margin stays well past 8
		assert.Equal(t, 120.0, pred.HomePowerRating)
		assert.Equal(t, models.ConfidenceMedium, pred.Confidence)
	})

	t.Run("injury cap does not promote low", func(t *testing.T) {
		home := ratedSnapshot("Home", 100.0)
		away := ratedSnapshot("Away", 100.0)
		away.Injuries = []models.InjuryEntry{
			{Player: "A", Status: models.InjuryOut},
			{Player: "B", Status: models.InjuryOut},
			{Player: "C", Status: models.InjuryOut},
		}

		pred, err := PredictGame(home, away, models.SportNBA, nil)
		require.NoError(t, err)
		assert.NotEqual(t, models.ConfidenceHigh, pred.Confidence)
	})
}

func TestPredictGame_InjuryFactorCarriesNoMarginImpact(t *testing.T) {
	home := ratedSnapshot("Home", 100.0)
	away := ratedSnapshot("Away", 100.0)
	away.Injuries = []models.InjuryEntry{{Player: "A", Status: models.InjuryOut}}

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	// Away's rating already absorbed the 2.0-point penalty; the margin is
	// power gap + home court only, with the injury factor display-only.
	assert.Equal(t, 98.0, pred.AwayPowerRating)
	assert.InDelta(t, 2.0/2+3.0, pred.PredictedMargin, 1e-9)

	var injuryFactor *models.PredictionFactor
	for i := range pred.Factors {
		if pred.Factors[i].Name == "Injuries (reflected in power ratings)" {
			injuryFactor = &pred.Factors[i]
		}
	}
	require.NotNil(t, injuryFactor)
	assert.Equal(t, models.FavorsHome, injuryFactor.Favors)
}

func TestPredictGame_ZeroRecentGamesStillPredicts(t *testing.T) {
	home := &models.TeamSnapshot{ID: 1, Name: "New Home", PointsForPerGame: 110, PointsAgainstPerGame: 110}
	away := &models.TeamSnapshot{ID: 2, Name: "New Away", PointsForPerGame: 110, PointsAgainstPerGame: 110}

	pred, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	assert.Equal(t, models.ConfidenceLow, pred.Confidence)
	assert.Equal(t, 100, pred.HomeWinProbability+pred.AwayWinProbability)
	assert.NotZero(t, pred.PredictedTotal)
}

func TestPredictGame_FactorOrderStable(t *testing.T) {
	home := ratedSnapshot("Home", 108.0)
	away := ratedSnapshot("Away", 100.0)
	home.Rest = &models.RestSnapshot{DaysOfRest: 4}
	away.Rest = &models.RestSnapshot{DaysOfRest: 2}

	first, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)
	second, err := PredictGame(home, away, models.SportNBA, nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Factors), len(second.Factors))
	for i := range first.Factors {
		assert.Equal(t, first.Factors[i], second.Factors[i])
	}
	assert.Equal(t, "Power rating edge", first.Factors[0].Name)
	assert.Equal(t, "Home court advantage", first.Factors[1].Name)
}

func TestPredictGame_MalformedInputFails(t *testing.T) {
	good := ratedSnapshot("Good", 100.0)

	t.Run("empty home identity", func(t *testing.T) {
		bad := ratedSnapshot("", 100.0)
		_, err := PredictGame(bad, good, models.SportNBA, nil)
		assert.Error(t, err)
	})

	t.Run("negative away scoring average", func(t *testing.T) {
		bad := ratedSnapshot("Bad", 100.0)
		bad.PointsAgainstPerGame = -5
		_, err := PredictGame(good, bad, models.SportNBA, nil)
		assert.Error(t, err)
	})
}

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1, 0.8413447},
		{-1, 0.1586553},
		{1.96, 0.9750021},
		{-1.96, 0.0249979},
		{3, 0.9986501},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, normalCDF(tt.z), 1e-6)
	}

	// Symmetry
	for _, z := range []float64{0.1, 0.5, 1.3, 2.7} {
		assert.InDelta(t, 1.0, normalCDF(z)+normalCDF(-z), 1e-12)
	}

	// Monotonic over a coarse grid
	prev := normalCDF(-5)
	for z := -4.5; z <= 5; z += 0.5 {
		cur := normalCDF(z)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}
