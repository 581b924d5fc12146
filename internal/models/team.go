package models

import (
	"fmt"
	"math"
	"time"
)

// Sport identifies which league's baselines apply to a computation.
type Sport string

const (
	SportNBA Sport = "nba"
	SportNFL Sport = "nfl"
)

// Valid reports whether the sport is one we model.
func (s Sport) Valid() bool {
	return s == SportNBA || s == SportNFL
}

// Team represents a team row as stored in the database
type Team struct {
	ID     int    `db:"id"`
	TeamID int    `db:"team_id"`
	Sport  string `db:"sport"`
	Code   string `db:"code"`
	Name   string `db:"name"`
	City   string `db:"city"`

	// Season scoring averages, refreshed nightly from the feed
	PointsForPerGame     float64 `db:"points_for_per_game"`
	PointsAgainstPerGame float64 `db:"points_against_per_game"`
	GamesPlayed          int     `db:"games_played"`
	Wins                 int     `db:"wins"`
	Losses               int     `db:"losses"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PointDifferential returns the season scoring margin per game.
func (t *Team) PointDifferential() float64 {
	return t.PointsForPerGame - t.PointsAgainstPerGame
}

// TeamInput is used for creating/updating teams from the sports data feed
type TeamInput struct {
	TeamID int    `json:"TeamID"`
	Sport  string `json:"Sport"`
	Code   string `json:"Key"`
	Name   string `json:"Name"`
	City   string `json:"City"`

	PointsForPerGame     *float64 `json:"PointsPerGame,omitempty"`
	PointsAgainstPerGame *float64 `json:"OpponentPointsPerGame,omitempty"`
	GamesPlayed          *int     `json:"Games,omitempty"`
	Wins                 *int     `json:"Wins,omitempty"`
	Losses               *int     `json:"Losses,omitempty"`
}

// ToTeam converts TeamInput (from the feed) to a Team model
func (ti *TeamInput) ToTeam() *Team {
	team := &Team{
		TeamID: ti.TeamID,
		Sport:  ti.Sport,
		Code:   ti.Code,
		Name:   ti.Name,
		City:   ti.City,
	}

	if ti.PointsForPerGame != nil {
		team.PointsForPerGame = *ti.PointsForPerGame
	}
	if ti.PointsAgainstPerGame != nil {
		team.PointsAgainstPerGame = *ti.PointsAgainstPerGame
	}
	if ti.GamesPlayed != nil {
		team.GamesPlayed = *ti.GamesPlayed
	}
	if ti.Wins != nil {
		team.Wins = *ti.Wins
	}
	if ti.Losses != nil {
		team.Losses = *ti.Losses
	}

	return team
}

// RecentGameResult is one completed game from a team's perspective,
// most-recent-first in any sequence it appears in.
type RecentGameResult struct {
	Date          time.Time `json:"date"`
	TeamScore     int       `json:"team_score"`
	OpponentScore int       `json:"opponent_score"`
	Won           bool      `json:"won"`
	Home          bool      `json:"home"`
}

// Margin returns the scoring margin from the team's perspective.
func (r RecentGameResult) Margin() int {
	return r.TeamScore - r.OpponentScore
}

// InjuryStatus is the feed's injury designation for a player.
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "Out"
	InjuryDoubtful     InjuryStatus = "Doubtful"
	InjuryQuestionable InjuryStatus = "Questionable"
	InjuryDayToDay     InjuryStatus = "Day-To-Day"
	InjuryProbable     InjuryStatus = "Probable"
	InjuryUnknown      InjuryStatus = "Unknown"
)

// ParseInjuryStatus maps a raw feed status string onto the known set,
// falling back to Unknown for anything unrecognized.
func ParseInjuryStatus(raw string) InjuryStatus {
	switch InjuryStatus(raw) {
	case InjuryOut, InjuryDoubtful, InjuryQuestionable, InjuryDayToDay, InjuryProbable:
		return InjuryStatus(raw)
	}
	return InjuryUnknown
}

// InjuryEntry is one injured player on a team's report.
type InjuryEntry struct {
	Player   string       `json:"player"`
	Position string       `json:"position"`
	Status   InjuryStatus `json:"status"`
}

// RestSnapshot captures a team's rest situation entering the upcoming game.
type RestSnapshot struct {
	DaysOfRest  int  `json:"days_of_rest"`
	BackToBack  bool `json:"back_to_back"`
	GamesLast7  int  `json:"games_last_7"`
	GamesLast14 int  `json:"games_last_14"`
}

// HeadToHead summarizes the matchup history between the two teams of a game,
// counted from the home team's perspective.
type HeadToHead struct {
	HomeWins int `json:"home_wins"`
	AwayWins int `json:"away_wins"`
	Games    int `json:"games"`
}

// TeamSnapshot is everything the prediction engine needs to know about one
// team entering a game. It is assembled per request and never mutated after
// construction.
type TeamSnapshot struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	PointsForPerGame     float64 `json:"points_for_per_game"`
	PointsAgainstPerGame float64 `json:"points_against_per_game"`
	PointDifferential    float64 `json:"point_differential"`

	// Most-recent-first, typically capped at 15 entries by the builder
	RecentGames []RecentGameResult `json:"recent_games"`

	Injuries []InjuryEntry `json:"injuries,omitempty"`

	// Optional context; absence simply skips the related adjustments
	ATS    *ATSSummary    `json:"ats,omitempty"`
	Totals *TotalsSummary `json:"totals,omitempty"`
	Rest   *RestSnapshot  `json:"rest,omitempty"`

	Home bool `json:"home"`
}

// Validate fails fast on malformed input so the engine never produces
// nonsense output from garbage data. Missing optional fields are fine.
func (ts *TeamSnapshot) Validate() error {
	if ts == nil {
		return fmt.Errorf("team snapshot is nil")
	}
	if ts.Name == "" {
		return fmt.Errorf("team snapshot has empty name")
	}
	for _, v := range []float64{ts.PointsForPerGame, ts.PointsAgainstPerGame, ts.PointDifferential} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("team %s: scoring average is NaN or Inf", ts.Name)
		}
	}
	if ts.PointsForPerGame < 0 || ts.PointsAgainstPerGame < 0 {
		return fmt.Errorf("team %s: negative scoring average", ts.Name)
	}
	for i, g := range ts.RecentGames {
		if g.TeamScore < 0 || g.OpponentScore < 0 {
			return fmt.Errorf("team %s: recent game %d has negative score", ts.Name, i)
		}
	}
	if ts.Rest != nil && ts.Rest.DaysOfRest < 0 {
		return fmt.Errorf("team %s: negative days of rest", ts.Name)
	}
	return nil
}

// OutTierInjuries counts players who are Out or Doubtful.
func (ts *TeamSnapshot) OutTierInjuries() int {
	n := 0
	for _, inj := range ts.Injuries {
		if inj.Status == InjuryOut || inj.Status == InjuryDoubtful {
			n++
		}
	}
	return n
}

// QuestionableTierInjuries counts players who are Questionable or Day-To-Day.
func (ts *TeamSnapshot) QuestionableTierInjuries() int {
	n := 0
	for _, inj := range ts.Injuries {
		if inj.Status == InjuryQuestionable || inj.Status == InjuryDayToDay {
			n++
		}
	}
	return n
}
