package models

// Player represents a player profile from the stats feed, used by the player
// pages. Stat keys vary by sport so the per-game averages stay generic.
type Player struct {
	PlayerID int    `json:"PlayerID"`
	TeamID   int    `json:"TeamID"`
	Name     string `json:"Name"`
	Position string `json:"Position"`
	Jersey   int    `json:"Jersey"`
	Status   string `json:"Status"`

	Stats map[string]float64 `json:"Stats,omitempty"`
}

// InjuryInput is one row of a team's injury report as the feed returns it
type InjuryInput struct {
	PlayerID int    `json:"PlayerID"`
	TeamID   int    `json:"TeamID"`
	Name     string `json:"Name"`
	Position string `json:"Position"`
	Status   string `json:"InjuryStatus"`
	BodyPart string `json:"InjuryBodyPart"`
}

// ToEntry converts an InjuryInput (from the feed) to an InjuryEntry
func (ii *InjuryInput) ToEntry() InjuryEntry {
	return InjuryEntry{
		Player:   ii.Name,
		Position: ii.Position,
		Status:   ParseInjuryStatus(ii.Status),
	}
}
