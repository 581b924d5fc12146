package models

import (
	"database/sql"
	"time"
)

// Quote represents one bookmaker's pregame line for a game as stored in the
// database. Nullable columns mirror the feed: a book may quote only some
// markets.
type Quote struct {
	ID        int    `db:"id"`
	GameID    int    `db:"game_id"`
	Bookmaker string `db:"bookmaker"`

	HomeSpread    sql.NullFloat64 `db:"home_spread"`
	Total         sql.NullFloat64 `db:"total"`
	HomeMoneyline sql.NullInt32   `db:"home_moneyline"`
	AwayMoneyline sql.NullInt32   `db:"away_moneyline"`

	FetchedAt time.Time `db:"fetched_at"`
	CreatedAt time.Time `db:"created_at"`
}

// QuoteInput is used for creating quotes from the odds feed
type QuoteInput struct {
	GameID    int    `json:"GameId"`
	Bookmaker string `json:"Sportsbook"`

	HomeSpread    *float64 `json:"HomePointSpread"`
	Total         *float64 `json:"OverUnder"`
	HomeMoneyline *int     `json:"HomeMoneyLine"`
	AwayMoneyline *int     `json:"AwayMoneyLine"`
}

// ToQuote converts QuoteInput (from the feed) to a Quote model
func (qi *QuoteInput) ToQuote(dbGameID int) *Quote {
	quote := &Quote{
		GameID:    dbGameID,
		Bookmaker: qi.Bookmaker,
		FetchedAt: time.Now(),
	}

	if qi.HomeSpread != nil {
		quote.HomeSpread = sql.NullFloat64{Float64: *qi.HomeSpread, Valid: true}
	}
	if qi.Total != nil {
		quote.Total = sql.NullFloat64{Float64: *qi.Total, Valid: true}
	}
	if qi.HomeMoneyline != nil {
		quote.HomeMoneyline = sql.NullInt32{Int32: int32(*qi.HomeMoneyline), Valid: true}
	}
	if qi.AwayMoneyline != nil {
		quote.AwayMoneyline = sql.NullInt32{Int32: int32(*qi.AwayMoneyline), Valid: true}
	}

	return quote
}

// MarketLine is a single normalized market line for a game: one
// representative bookmaker's spread, total, and moneylines. The spread is
// home-relative (negative = home favored). Nil fields mean the market was
// not quoted; the value bet finder simply skips those markets.
type MarketLine struct {
	Bookmaker string `json:"bookmaker,omitempty"`

	Spread        *float64 `json:"spread,omitempty"`
	Total         *float64 `json:"total,omitempty"`
	HomeMoneyline *int     `json:"home_moneyline,omitempty"`
	AwayMoneyline *int     `json:"away_moneyline,omitempty"`
}

// ToMarketLine flattens a stored quote into the normalized line the value
// bet finder consumes.
func (q *Quote) ToMarketLine() *MarketLine {
	line := &MarketLine{Bookmaker: q.Bookmaker}

	if q.HomeSpread.Valid {
		v := q.HomeSpread.Float64
		line.Spread = &v
	}
	if q.Total.Valid {
		v := q.Total.Float64
		line.Total = &v
	}
	if q.HomeMoneyline.Valid {
		v := int(q.HomeMoneyline.Int32)
		line.HomeMoneyline = &v
	}
	if q.AwayMoneyline.Valid {
		v := int(q.AwayMoneyline.Int32)
		line.AwayMoneyline = &v
	}

	return line
}

// Empty reports whether the line quotes no market at all.
func (m *MarketLine) Empty() bool {
	return m == nil ||
		(m.Spread == nil && m.Total == nil && m.HomeMoneyline == nil && m.AwayMoneyline == nil)
}

// ClosingLine is the final pregame spread and total recorded for a completed
// game, the raw material for real ATS/Totals summaries.
type ClosingLine struct {
	ID         int       `db:"id"`
	GameID     int       `db:"game_id"`
	HomeTeamID int       `db:"home_team_id"`
	AwayTeamID int       `db:"away_team_id"`
	GameDate   time.Time `db:"game_date"`

	HomeSpread float64 `db:"home_spread"`
	Total      float64 `db:"total"`
	HomeScore  int     `db:"home_score"`
	AwayScore  int     `db:"away_score"`

	CreatedAt time.Time `db:"created_at"`
}

// CoverFor classifies the game against the closing spread from the given
// team's perspective.
func (c *ClosingLine) CoverFor(teamID int) CoverOutcome {
	var margin, spread float64
	if teamID == c.HomeTeamID {
		margin = float64(c.HomeScore - c.AwayScore)
		spread = c.HomeSpread
	} else {
		margin = float64(c.AwayScore - c.HomeScore)
		spread = -c.HomeSpread
	}

	// A team covers when its margin beats the handicap it was assigned
	switch {
	case margin+spread > 0:
		return CoverWin
	case margin+spread < 0:
		return CoverLoss
	}
	return CoverPush
}

// TotalOutcome classifies the game's combined score against the closing total.
func (c *ClosingLine) TotalOutcome() TotalOutcome {
	combined := float64(c.HomeScore + c.AwayScore)
	switch {
	case combined > c.Total:
		return TotalOver
	case combined < c.Total:
		return TotalUnder
	}
	return TotalPush
}
