package engine

import (
	"fmt"
	"math"

	"scoreline/server/internal/models"
)

// PredictGame synthesizes two team snapshots and situational context into a
// full game prediction. Missing optional inputs (head-to-head, totals
// summaries, rest info) skip their factor; the function returns a defined
// result for any two well-formed snapshots, even with zero recent games.
func PredictGame(home, away *models.TeamSnapshot, sport models.Sport, h2h *models.HeadToHead) (*models.GamePrediction, error) {
	if err := home.Validate(); err != nil {
		return nil, fmt.Errorf("invalid home snapshot: %w", err)
	}
	if err := away.Validate(); err != nil {
		return nil, fmt.Errorf("invalid away snapshot: %w", err)
	}
	w := WeightsFor(sport)

	homePower, err := ComputePowerRating(home, sport)
	if err != nil {
		return nil, err
	}
	awayPower, err := ComputePowerRating(away, sport)
	if err != nil {
		return nil, err
	}
	powerDiff := homePower - awayPower

	var factors []models.PredictionFactor
	addFactor := func(name string, points float64) {
		side := models.FavorsNeither
		if points > 0 {
			side = models.FavorsHome
		} else if points < 0 {
			side = models.FavorsAway
		}
		factors = append(factors, models.PredictionFactor{Name: name, Points: points, Favors: side})
	}

	margin := powerDiff / 2
	addFactor("Power rating edge", margin)

	margin += w.HomeAdvantage
	addFactor("Home court advantage", w.HomeAdvantage)

	homeB2B := home.Rest != nil && (home.Rest.BackToBack || home.Rest.DaysOfRest <= 1)
	awayB2B := away.Rest != nil && (away.Rest.BackToBack || away.Rest.DaysOfRest <= 1)
	if homeB2B {
		margin -= BackToBackPenalty
		addFactor("Home team on back-to-back", -BackToBackPenalty)
	}
	if awayB2B {
		margin += BackToBackPenalty
		addFactor("Away team on back-to-back", BackToBackPenalty)
	}

	if !homeB2B && !awayB2B && home.Rest != nil && away.Rest != nil {
		gap := home.Rest.DaysOfRest - away.Rest.DaysOfRest
		if gap >= RestDiffMinGap || gap <= -RestDiffMinGap {
			adj := float64(gap) * RestDiffWeight
			margin += adj
			addFactor("Rest advantage", adj)
		}
	}

	if h2h != nil && h2h.Games > 0 {
		gap := h2h.HomeWins - h2h.AwayWins
		if gap >= HeadToHeadMinGap || gap <= -HeadToHeadMinGap {
			adj := float64(gap) * HeadToHeadWeight
			margin += adj
			addFactor("Head-to-head edge", adj)
		}
	}

	// Injuries are already folded into each power rating; record the
	// differential for display without moving the margin again.
	homeInjury := InjuryPenalty(home.Injuries)
	awayInjury := InjuryPenalty(away.Injuries)
	if homeInjury > 0 || awayInjury > 0 {
		addFactor("Injuries (reflected in power ratings)", awayInjury-homeInjury)
	}

	total := predictTotal(home, away, w)

	homeScore := int(math.Round(total/2 + margin/2))
	awayScore := int(math.Round(total/2 - margin/2))

	homeProb := int(math.Round(normalCDF(margin/w.MarginSigma) * 100))
	awayProb := 100 - homeProb

	winner := home.Name
	winProb := homeProb
	if awayProb > homeProb {
		winner = away.Name
		winProb = awayProb
	}

	// Market convention: negative = home favored, half-point granularity
	spread := -math.Round(margin*2) / 2

	pred := &models.GamePrediction{
		Sport:              sport,
		HomeTeam:           home.Name,
		AwayTeam:           away.Name,
		PredictedWinner:    winner,
		WinProbability:     winProb,
		HomeWinProbability: homeProb,
		AwayWinProbability: awayProb,
		Confidence:         confidenceFor(margin, powerDiff, home, away),
		PredictedHomeScore: homeScore,
		PredictedAwayScore: awayScore,
		PredictedSpread:    spread,
		PredictedTotal:     total,
		Factors:            factors,
		HomePowerRating:    homePower,
		AwayPowerRating:    awayPower,
		PowerRatingDiff:    powerDiff,
		PredictedMargin:    margin,
	}

	return pred, nil
}

// predictTotal estimates the combined score. Baseline is the average of both
// teams' season scoring midpoints; when both teams carry a totals summary
// (real or simulated) their observed average totals are preferred. Clamped
// to keep sparse data from producing degenerate outputs.
func predictTotal(home, away *models.TeamSnapshot, w Weights) float64 {
	total := (home.PointsForPerGame + home.PointsAgainstPerGame +
		away.PointsForPerGame + away.PointsAgainstPerGame) / 2

	if home.Totals != nil && away.Totals != nil {
		total = (home.Totals.AvgTotalPoints + away.Totals.AvgTotalPoints) / 2
	}

	return math.Max(w.TotalMin, math.Min(w.TotalMax, total))
}

// confidenceFor applies the promotion/demotion ladder: high needs both a wide
// margin and a wide power gap, sparse data forces low, and heavy out-tier
// injury reports cap high at medium.
func confidenceFor(margin, powerDiff float64, home, away *models.TeamSnapshot) models.Confidence {
	conf := models.ConfidenceLow
	if math.Abs(margin) >= MediumConfidenceMargin {
		conf = models.ConfidenceMedium
	}
	if math.Abs(margin) >= HighConfidenceMargin && math.Abs(powerDiff) >= HighConfidencePowerDiff {
		conf = models.ConfidenceHigh
	}

	if len(home.RecentGames) < MinGamesForConfidence || len(away.RecentGames) < MinGamesForConfidence {
		conf = models.ConfidenceLow
	}

	if home.OutTierInjuries() >= InjuryConfidenceCap || away.OutTierInjuries() >= InjuryConfidenceCap {
		if conf == models.ConfidenceHigh {
			conf = models.ConfidenceMedium
		}
	}

	return conf
}

// normalCDF evaluates the standard normal CDF via the Abramowitz-Stegun
// rational approximation (26.2.17), absolute error below 1e-6.
func normalCDF(z float64) float64 {
	if z < 0 {
		return 1 - normalCDF(-z)
	}

	t := 1 / (1 + 0.2316419*z)
	poly := t * (0.319381530 + t*(-0.356563782+t*(1.781477937+t*(-1.821255978+t*1.330274429))))
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)

	return 1 - pdf*poly
}
