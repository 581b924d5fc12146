package engine

import "scoreline/server/internal/models"

// Weights collects every per-sport constant the model uses, so tuning happens
// here and nowhere else. 100 is league average on the power rating scale.
type Weights struct {
	// League baselines
	LeagueAvgPoints float64 // per-team points per game
	LeagueAvgTotal  float64 // combined points per game
	PaceCenter      float64 // center of the pace scale

	// Power rating
	DiffFactor float64 // points of rating per point of season scoring margin

	// Game prediction
	HomeAdvantage float64 // flat home margin bonus; same value both sports
	MarginSigma   float64 // stddev of the margin distribution for win probability
	TotalMin      float64 // clamp on predicted totals
	TotalMax      float64
}

// Shared model weights that do not vary by sport. The injury penalty is a
// deliberately coarse proxy: it does not know stars from bench players.
const (
	EfficiencyWeight      = 0.3 // net rating contribution to power rating
	MinGamesForEfficiency = 5
	FormScale             = 10.0 // last-5 win% deviation scale
	FormWeight            = 0.6
	FormWindow            = 5
	StreakWeight          = 0.3
	StreakNotable         = 3 // streaks shorter than this are noise
	StreakCap             = 5

	StarterInjuryWeight      = 2.0 // first two out-tier players
	StarterInjurySlots       = 2
	RotationInjuryWeight     = 0.5 // out-tier players beyond the first two
	QuestionableInjuryWeight = 0.25

	BackToBackPenalty = 2.5
	RestBonusPerDay   = 0.5
	RestBonusMinDays  = 3
	RestDiffWeight    = 0.5
	RestDiffMinGap    = 2

	HeadToHeadWeight = 0.3
	HeadToHeadMinGap = 2

	RecentLookback = 10 // games considered "recent" for efficiency aggregates

	// Simulated ATS fallback: assume home teams are laid a flat 3 points
	SimulatedHomeSpread = -3.0

	// Confidence thresholds
	HighConfidenceMargin    = 8.0
	HighConfidencePowerDiff = 8.0
	MediumConfidenceMargin  = 4.0
	MinGamesForConfidence   = 5
	InjuryConfidenceCap     = 3 // out-tier injuries that cap confidence at medium

	// Value bet thresholds
	SpreadEdgeMin     = 2.0
	SpreadEdgeMedium  = 3.0
	SpreadEdgeHigh    = 4.0
	TotalEdgeMin      = 3.0
	TotalEdgeMedium   = 4.0
	TotalEdgeHigh     = 6.0
	MoneylineEdgeMin  = 5.0 // percentage points
	MoneylineEdgeMed  = 7.0
	MoneylineEdgeHigh = 10.0
	MoneylineFloor    = -200 // skip sides shorter than this price
)

var sportWeights = map[models.Sport]Weights{
	models.SportNBA: {
		LeagueAvgPoints: 110,
		LeagueAvgTotal:  220,
		PaceCenter:      100,
		DiffFactor:      1.5,
		HomeAdvantage:   3.0,
		MarginSigma:     11,
		TotalMin:        200,
		TotalMax:        260,
	},
	models.SportNFL: {
		LeagueAvgPoints: 22,
		LeagueAvgTotal:  45,
		PaceCenter:      22,
		DiffFactor:      2.0, // football points carry more marginal value per game
		HomeAdvantage:   3.0,
		MarginSigma:     13,
		TotalMin:        35,
		TotalMax:        60,
	},
}

// WeightsFor returns the weight table for a sport, defaulting to the NBA
// table for anything unrecognized.
func WeightsFor(sport models.Sport) Weights {
	if w, ok := sportWeights[sport]; ok {
		return w
	}
	return sportWeights[models.SportNBA]
}
