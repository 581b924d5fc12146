package models

// RecordSource discriminates real historical-spread records from summaries we
// synthesized out of raw scores. Simulated records must never be presented as
// equal in confidence to real ones, so the discriminant rides along with the
// data everywhere it goes.
type RecordSource string

const (
	RecordReal      RecordSource = "real"
	RecordSimulated RecordSource = "simulated"
)

// CoverOutcome classifies one game against its spread.
type CoverOutcome string

const (
	CoverWin  CoverOutcome = "W"
	CoverLoss CoverOutcome = "L"
	CoverPush CoverOutcome = "P"
)

// TotalOutcome classifies one game's combined score against its total line.
type TotalOutcome string

const (
	TotalOver  TotalOutcome = "O"
	TotalUnder TotalOutcome = "U"
	TotalPush  TotalOutcome = "P"
)

// ATSSummary is a team's record against the spread.
type ATSSummary struct {
	Source RecordSource `json:"source"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Pushes int `json:"pushes"`

	HomeWins   int `json:"home_wins"`
	HomeLosses int `json:"home_losses"`
	AwayWins   int `json:"away_wins"`
	AwayLosses int `json:"away_losses"`

	// Most-recent-first, at most 10 entries
	LastTen []CoverOutcome `json:"last_ten"`
}

// IsSimulated reports whether this summary was synthesized rather than built
// from real historical spreads.
func (a *ATSSummary) IsSimulated() bool {
	return a != nil && a.Source == RecordSimulated
}

// TotalsSummary is a team's over/under record.
type TotalsSummary struct {
	Source RecordSource `json:"source"`

	Overs  int `json:"overs"`
	Unders int `json:"unders"`
	Pushes int `json:"pushes"`

	// Average combined score across the summarized games
	AvgTotalPoints float64 `json:"avg_total_points"`

	// Most-recent-first, at most 10 entries
	LastTen []TotalOutcome `json:"last_ten"`
}

// IsSimulated reports whether this summary was synthesized rather than built
// from real historical totals.
func (t *TotalsSummary) IsSimulated() bool {
	return t != nil && t.Source == RecordSimulated
}
