package models

import (
	"database/sql"
	"time"
)

// Game represents a scheduled or completed game
type Game struct {
	ID         int       `db:"id"`
	GameID     int       `db:"game_id"`
	Sport      string    `db:"sport"`
	Season     int       `db:"season"`
	HomeTeamID int       `db:"home_team_id"`
	AwayTeamID int       `db:"away_team_id"`
	HomeCode   string    `db:"home_code"`
	AwayCode   string    `db:"away_code"`
	GameDate   time.Time `db:"game_date"`
	Status     string    `db:"status"`

	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameInput is used for creating/updating games from the schedule feed
type GameInput struct {
	GameID     int    `json:"GameID"`
	Sport      string `json:"Sport"`
	Season     int    `json:"Season"`
	HomeTeamID int    `json:"HomeTeamID"`
	AwayTeamID int    `json:"AwayTeamID"`
	HomeTeam   string `json:"HomeTeam"` // team code
	AwayTeam   string `json:"AwayTeam"` // team code
	DateTime   string `json:"DateTime"` // ISO 8601
	Status     string `json:"Status"`

	HomeScore *int `json:"HomeScore,omitempty"`
	AwayScore *int `json:"AwayScore,omitempty"`
}

// ToGame converts GameInput (from the feed) to a Game model
func (gi *GameInput) ToGame() *Game {
	game := &Game{
		GameID:     gi.GameID,
		Sport:      gi.Sport,
		Season:     gi.Season,
		HomeTeamID: gi.HomeTeamID,
		AwayTeamID: gi.AwayTeamID,
		HomeCode:   gi.HomeTeam,
		AwayCode:   gi.AwayTeam,
		Status:     gi.Status,
	}

	if gameTime, err := time.Parse(time.RFC3339, gi.DateTime); err == nil {
		game.GameDate = gameTime
	}

	if gi.HomeScore != nil {
		game.HomeScore = sql.NullInt32{Int32: int32(*gi.HomeScore), Valid: true}
	}
	if gi.AwayScore != nil {
		game.AwayScore = sql.NullInt32{Int32: int32(*gi.AwayScore), Valid: true}
	}

	return game
}

// IsActive returns true if the game is currently in progress
func (g *Game) IsActive() bool {
	return g.Status == "InProgress"
}

// IsScheduled returns true if the game is scheduled but not started
func (g *Game) IsScheduled() bool {
	return g.Status == "Scheduled"
}

// IsFinal returns true if the game is completed
func (g *Game) IsFinal() bool {
	return g.Status == "Final"
}

// ResultFor converts a final game into a RecentGameResult from the given
// team's perspective. Returns false if the game has no final score or the
// team did not play in it.
func (g *Game) ResultFor(teamID int) (RecentGameResult, bool) {
	if !g.IsFinal() || !g.HomeScore.Valid || !g.AwayScore.Valid {
		return RecentGameResult{}, false
	}

	home, away := int(g.HomeScore.Int32), int(g.AwayScore.Int32)
	switch teamID {
	case g.HomeTeamID:
		return RecentGameResult{
			Date:          g.GameDate,
			TeamScore:     home,
			OpponentScore: away,
			Won:           home > away,
			Home:          true,
		}, true
	case g.AwayTeamID:
		return RecentGameResult{
			Date:          g.GameDate,
			TeamScore:     away,
			OpponentScore: home,
			Won:           away > home,
			Home:          false,
		}, true
	}
	return RecentGameResult{}, false
}
