package cards

import (
	"time"

	"github.com/google/uuid"
)

// Player is the player a card depicts, as stored locally.
type Player struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	Position      string    `json:"position,omitempty"`
	TeamID        *int      `json:"teamId,omitempty"`
	TeamName      string    `json:"teamName,omitempty"`
	TeamShortName string    `json:"teamShortName,omitempty"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	ClubLogoURL   string    `json:"clubLogoUrl,omitempty"`
	TotalPoints   int       `json:"totalPoints"`
	NowCost       float64   `json:"nowCost"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Card is an owned collectible.
type Card struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"userId"`
	PlayerID     int       `json:"playerId"`
	Rarity       Rarity    `json:"rarity"`
	SerialNumber int       `json:"serialNumber"`
	MaxSupply    int       `json:"maxSupply"`
	AcquiredAt   time.Time `json:"acquiredAt"`
	Player       *Player   `json:"player,omitempty"`
	Render       *Render   `json:"render,omitempty"`
}

// WithRender returns c with its render parameters filled in.
func (c Card) WithRender() Card {
	r := Params(c.Rarity, c.SerialNumber, c.MaxSupply)
	c.Render = &r
	return c
}

// WithRenders applies WithRender to every card.
func WithRenders(cs []Card) []Card {
	out := make([]Card, len(cs))
	for i, c := range cs {
		out[i] = c.WithRender()
	}
	return out
}
