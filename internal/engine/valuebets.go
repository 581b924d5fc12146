package engine

import (
	"fmt"
	"math"
	"sort"

	"scoreline/server/internal/models"
)

// OddsToImpliedProbability converts American odds to the probability the
// market is implying, as a percentage. -150 -> 60, +150 -> 40.
func OddsToImpliedProbability(odds int) float64 {
	if odds == 0 {
		return 0
	}
	if odds < 0 {
		return float64(-odds) / float64(-odds+100) * 100
	}
	return 100 / float64(odds+100) * 100
}

// FindValueBets compares a prediction against the market line and emits a
// recommendation for every market where the disagreement clears its
// threshold. No market odds means no value bets, never an error. The result
// is sorted descending by edge; ties keep evaluation order (spread, total,
// home moneyline, away moneyline).
func FindValueBets(pred *models.GamePrediction, line *models.MarketLine, gameID int) []models.ValueBet {
	bets := []models.ValueBet{}
	if pred == nil || line.Empty() {
		return bets
	}

	if line.Spread != nil {
		if bet, ok := spreadBet(pred, *line.Spread, gameID); ok {
			bets = append(bets, bet)
		}
	}

	if line.Total != nil {
		if bet, ok := totalBet(pred, *line.Total, gameID); ok {
			bets = append(bets, bet)
		}
	}

	if line.HomeMoneyline != nil {
		if bet, ok := moneylineBet(pred, *line.HomeMoneyline, gameID, true); ok {
			bets = append(bets, bet)
		}
	}
	if line.AwayMoneyline != nil {
		if bet, ok := moneylineBet(pred, *line.AwayMoneyline, gameID, false); ok {
			bets = append(bets, bet)
		}
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].Edge > bets[j].Edge
	})

	return bets
}

// spreadBet flags games where the market's spread sits far from the model's.
// A negative diff means the market rates the home side stronger than the
// model does, so the value is on the away team getting the extra points.
func spreadBet(pred *models.GamePrediction, marketSpread float64, gameID int) (models.ValueBet, bool) {
	diff := marketSpread - pred.PredictedSpread
	edge := math.Abs(diff)
	if edge < SpreadEdgeMin {
		return models.ValueBet{}, false
	}

	team := pred.HomeTeam
	teamMarketSpread := marketSpread
	if diff < 0 {
		team = pred.AwayTeam
		teamMarketSpread = -marketSpread
	}

	// Underdog/favorite is relative to the market's own spread sign
	side := models.SideFavorite
	if teamMarketSpread >= 0 {
		side = models.SideUnderdog
	}

	return models.ValueBet{
		GameID:      gameID,
		Market:      models.MarketSpread,
		Side:        side,
		Team:        team,
		Edge:        edge,
		Confidence:  tieredConfidence(edge, SpreadEdgeHigh, SpreadEdgeMedium),
		ModelLine:   pred.PredictedSpread,
		MarketValue: marketSpread,
		Explanation: fmt.Sprintf(
			"Model projects %s %+.1f but the market has %+.1f; %s is getting %.1f more points than the model says it should",
			pred.HomeTeam, pred.PredictedSpread, marketSpread, team, edge),
	}, true
}

func totalBet(pred *models.GamePrediction, marketTotal float64, gameID int) (models.ValueBet, bool) {
	diff := pred.PredictedTotal - marketTotal
	edge := math.Abs(diff)
	if edge < TotalEdgeMin {
		return models.ValueBet{}, false
	}

	market := models.MarketTotalOver
	side := models.SideOver
	team := "Over"
	if diff < 0 {
		market = models.MarketTotalUnder
		side = models.SideUnder
		team = "Under"
	}

	return models.ValueBet{
		GameID:      gameID,
		Market:      market,
		Side:        side,
		Team:        team,
		Edge:        edge,
		Confidence:  tieredConfidence(edge, TotalEdgeHigh, TotalEdgeMedium),
		ModelLine:   pred.PredictedTotal,
		MarketValue: marketTotal,
		Explanation: fmt.Sprintf(
			"Model projects %.1f combined points against a market total of %.1f (%s by %.1f)",
			pred.PredictedTotal, marketTotal, team, edge),
	}, true
}

// moneylineBet compares the model's win probability to the market's implied
// probability for one side. Sides priced shorter than MoneylineFloor are
// skipped outright: the edge on heavy favorites is unreliable and low value.
func moneylineBet(pred *models.GamePrediction, odds int, gameID int, homeSide bool) (models.ValueBet, bool) {
	if odds < MoneylineFloor {
		return models.ValueBet{}, false
	}

	modelProb := float64(pred.HomeWinProbability)
	team := pred.HomeTeam
	if !homeSide {
		modelProb = float64(pred.AwayWinProbability)
		team = pred.AwayTeam
	}

	implied := OddsToImpliedProbability(odds)
	edge := modelProb - implied
	if edge < MoneylineEdgeMin {
		return models.ValueBet{}, false
	}

	side := models.SideUnderdog
	if odds < 0 {
		side = models.SideFavorite
	}

	return models.ValueBet{
		GameID:      gameID,
		Market:      models.MarketMoneyline,
		Side:        side,
		Team:        team,
		Edge:        edge,
		Confidence:  tieredConfidence(edge, MoneylineEdgeHigh, MoneylineEdgeMed),
		ModelLine:   modelProb,
		MarketValue: implied,
		Explanation: fmt.Sprintf(
			"Model gives %s a %.0f%% win probability against a market-implied %.1f%% (%+d)",
			team, modelProb, implied, odds),
	}, true
}

func tieredConfidence(edge, high, medium float64) models.Confidence {
	switch {
	case edge >= high:
		return models.ConfidenceHigh
	case edge >= medium:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
