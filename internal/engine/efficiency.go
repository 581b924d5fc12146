package engine

import (
	"scoreline/server/internal/models"
)

// Efficiency holds normalized scoring metrics over a recent-game window.
// Ratings are centered at 100; for the defensive rating lower is better, so
// callers color-coding must invert the sign.
type Efficiency struct {
	Offensive float64 `json:"offensive"`
	Defensive float64 `json:"defensive"`
	Net       float64 `json:"net"`
	Pace      float64 `json:"pace"`
	Games     int     `json:"games"`
}

// ComputeEfficiency derives offensive/defensive/net ratings and pace from a
// most-recent-first result sequence. Only the most recent RecentLookback
// games count. Zero input games yields the neutral baseline rather than an
// error.
func ComputeEfficiency(games []models.RecentGameResult, sport models.Sport) Efficiency {
	w := WeightsFor(sport)

	if len(games) > RecentLookback {
		games = games[:RecentLookback]
	}
	if len(games) == 0 {
		return Efficiency{Offensive: 100, Defensive: 100, Net: 0, Pace: w.PaceCenter}
	}

	var scored, allowed float64
	for _, g := range games {
		scored += float64(g.TeamScore)
		allowed += float64(g.OpponentScore)
	}
	n := float64(len(games))
	avgFor := scored / n
	avgAgainst := allowed / n

	off := avgFor / w.LeagueAvgPoints * 100
	def := avgAgainst / w.LeagueAvgPoints * 100
	pace := (avgFor + avgAgainst) / w.LeagueAvgTotal * w.PaceCenter

	return Efficiency{
		Offensive: off,
		Defensive: def,
		Net:       off - def,
		Pace:      pace,
		Games:     len(games),
	}
}

// Form summarizes recent win/loss results. Streak is the count of consecutive
// identical results starting from the most recent game, positive for wins and
// negative for losses; it is not a running season streak.
type Form struct {
	Sequence string  `json:"sequence"` // e.g. "WWLWL", most recent first
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	WinPct   float64 `json:"win_pct"`
	Streak   int     `json:"streak"`
}

// ComputeForm summarizes the last FormWindow games of a most-recent-first
// result sequence.
func ComputeForm(games []models.RecentGameResult) Form {
	window := games
	if len(window) > FormWindow {
		window = window[:FormWindow]
	}

	var form Form
	seq := make([]byte, 0, len(window))
	for _, g := range window {
		if g.Won {
			form.Wins++
			seq = append(seq, 'W')
		} else {
			form.Losses++
			seq = append(seq, 'L')
		}
	}
	form.Sequence = string(seq)
	if len(window) > 0 {
		form.WinPct = float64(form.Wins) / float64(len(window))
	}

	// Streak runs over the full sequence, not just the form window
	for i, g := range games {
		if i == 0 {
			if g.Won {
				form.Streak = 1
			} else {
				form.Streak = -1
			}
			continue
		}
		if g.Won == games[0].Won {
			if g.Won {
				form.Streak++
			} else {
				form.Streak--
			}
		} else {
			break
		}
	}

	return form
}

// SimulateATS synthesizes an against-the-spread summary from raw scores when
// no real historical spreads are available. Every game is assumed to carry a
// flat 3-point home spread, which is intentionally low-fidelity: the result
// is always tagged simulated and must never be treated as real.
func SimulateATS(games []models.RecentGameResult) *models.ATSSummary {
	if len(games) == 0 {
		return nil
	}

	ats := &models.ATSSummary{Source: models.RecordSimulated}
	for i, g := range games {
		spread := SimulatedHomeSpread
		if !g.Home {
			spread = -SimulatedHomeSpread
		}

		margin := float64(g.Margin())
		var outcome models.CoverOutcome
		switch {
		case margin+spread > 0:
			outcome = models.CoverWin
		case margin+spread < 0:
			outcome = models.CoverLoss
		default:
			outcome = models.CoverPush
		}

		switch outcome {
		case models.CoverWin:
			ats.Wins++
			if g.Home {
				ats.HomeWins++
			} else {
				ats.AwayWins++
			}
		case models.CoverLoss:
			ats.Losses++
			if g.Home {
				ats.HomeLosses++
			} else {
				ats.AwayLosses++
			}
		default:
			ats.Pushes++
		}

		if i < 10 {
			ats.LastTen = append(ats.LastTen, outcome)
		}
	}

	return ats
}

// SimulateTotals synthesizes an over/under summary from raw scores against a
// flat league-average total line. Tagged simulated like SimulateATS.
func SimulateTotals(games []models.RecentGameResult, sport models.Sport) *models.TotalsSummary {
	if len(games) == 0 {
		return nil
	}
	w := WeightsFor(sport)

	totals := &models.TotalsSummary{Source: models.RecordSimulated}
	var combinedSum float64
	for i, g := range games {
		combined := float64(g.TeamScore + g.OpponentScore)
		combinedSum += combined

		var outcome models.TotalOutcome
		switch {
		case combined > w.LeagueAvgTotal:
			outcome = models.TotalOver
			totals.Overs++
		case combined < w.LeagueAvgTotal:
			outcome = models.TotalUnder
			totals.Unders++
		default:
			outcome = models.TotalPush
			totals.Pushes++
		}

		if i < 10 {
			totals.LastTen = append(totals.LastTen, outcome)
		}
	}
	totals.AvgTotalPoints = combinedSum / float64(len(games))

	return totals
}
