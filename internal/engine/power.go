package engine

import (
	"fmt"
	"math"

	"scoreline/server/internal/models"
)

// ComputePowerRating collapses a team snapshot into a single strength score,
// 100 = league average, unbounded in either direction. It is a pure derived
// value recomputed on every call, never cached or persisted.
func ComputePowerRating(ts *models.TeamSnapshot, sport models.Sport) (float64, error) {
	if err := ts.Validate(); err != nil {
		return 0, fmt.Errorf("invalid team snapshot: %w", err)
	}
	w := WeightsFor(sport)

	rating := 100 + ts.PointDifferential*w.DiffFactor

	if len(ts.RecentGames) >= MinGamesForEfficiency {
		eff := ComputeEfficiency(ts.RecentGames, sport)
		rating += eff.Net * EfficiencyWeight
	}

	form := ComputeForm(ts.RecentGames)
	if len(ts.RecentGames) > 0 {
		rating += (form.WinPct - 0.5) * FormScale * FormWeight
	}

	if streak := form.Streak; streak >= StreakNotable || streak <= -StreakNotable {
		capped := math.Min(math.Abs(float64(streak)), StreakCap)
		if streak > 0 {
			rating += capped * StreakWeight
		} else {
			rating -= capped * StreakWeight
		}
	}

	rating -= InjuryPenalty(ts.Injuries)

	if ts.Rest != nil {
		switch {
		case ts.Rest.BackToBack || ts.Rest.DaysOfRest <= 1:
			rating -= BackToBackPenalty
		case ts.Rest.DaysOfRest >= RestBonusMinDays:
			rating += float64(ts.Rest.DaysOfRest-2) * RestBonusPerDay
		}
	}

	return math.Round(rating*10) / 10, nil
}

// InjuryPenalty converts an injury report into points of power rating. The
// first two out-tier players are weighted as lost starters, the rest as
// rotation players; questionable-tier players count a quarter point each.
// It is a coarse proxy that cannot tell stars from bench players.
func InjuryPenalty(injuries []models.InjuryEntry) float64 {
	var outTier, questionableTier int
	for _, inj := range injuries {
		switch inj.Status {
		case models.InjuryOut, models.InjuryDoubtful:
			outTier++
		case models.InjuryQuestionable, models.InjuryDayToDay:
			questionableTier++
		}
	}

	starters := outTier
	if starters > StarterInjurySlots {
		starters = StarterInjurySlots
	}
	rotation := outTier - starters

	return float64(starters)*StarterInjuryWeight +
		float64(rotation)*RotationInjuryWeight +
		float64(questionableTier)*QuestionableInjuryWeight
}
