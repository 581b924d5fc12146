package models

// Confidence is the qualitative trust level attached to a prediction or a
// recommended bet.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// FactorSide says which team a prediction factor favors.
type FactorSide string

const (
	FavorsHome    FactorSide = "home"
	FavorsAway    FactorSide = "away"
	FavorsNeither FactorSide = "neutral"
)

// PredictionFactor is one named, human-readable contribution to the margin
// calculation. Factors are accumulated in insertion order; the order carries
// no meaning but is stable for a given input.
type PredictionFactor struct {
	Name   string     `json:"name"`
	Points float64    `json:"points"`
	Favors FactorSide `json:"favors"`
}

// GamePrediction is the full model output for one matchup. It is recomputed
// fresh on every call and never persisted.
type GamePrediction struct {
	Sport Sport `json:"sport"`

	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	PredictedWinner    string `json:"predicted_winner"`
	WinProbability     int    `json:"win_probability"`
	HomeWinProbability int    `json:"home_win_probability"`
	AwayWinProbability int    `json:"away_win_probability"`

	Confidence Confidence `json:"confidence"`

	PredictedHomeScore int     `json:"predicted_home_score"`
	PredictedAwayScore int     `json:"predicted_away_score"`
	PredictedSpread    float64 `json:"predicted_spread"` // home-relative; negative = home favored
	PredictedTotal     float64 `json:"predicted_total"`

	Factors []PredictionFactor `json:"factors"`

	HomePowerRating float64 `json:"home_power_rating"`
	AwayPowerRating float64 `json:"away_power_rating"`
	PowerRatingDiff float64 `json:"power_rating_diff"`
	PredictedMargin float64 `json:"predicted_margin"` // home-relative, pre-rounding
}

// BetMarket is the market segment a value bet targets.
type BetMarket string

const (
	MarketSpread     BetMarket = "spread"
	MarketMoneyline  BetMarket = "moneyline"
	MarketTotalOver  BetMarket = "total_over"
	MarketTotalUnder BetMarket = "total_under"
)

// BetSide is which side of the market the model recommends.
type BetSide string

const (
	SideUnderdog BetSide = "underdog"
	SideFavorite BetSide = "favorite"
	SideOver     BetSide = "over"
	SideUnder    BetSide = "under"
)

// ValueBet is one recommended wager where the model and the market disagree
// beyond a threshold. Ephemeral: recomputed per request, never stored.
type ValueBet struct {
	GameID  int       `json:"game_id"`
	Market  BetMarket `json:"market"`
	Side    BetSide   `json:"side"`
	Team    string    `json:"team"` // team name, or "Over"/"Under" for totals

	// Points for spread/total markets, percentage points for moneyline
	Edge       float64    `json:"edge"`
	Confidence Confidence `json:"confidence"`

	ModelLine   float64 `json:"model_line"`
	MarketValue float64 `json:"market_value"`

	Explanation string `json:"explanation"`
}
