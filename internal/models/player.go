package models

// Role distinguishes the room creator from everyone who joined later.
// Exactly one creator per room, assigned at creation and never reassigned.
type Role string

const (
	RoleCreator Role = "creator"
	RolePlayer  Role = "player"
)

// Player is a participant in a room. Spectators watch but never vote;
// spectator-ness is independent of the creator role.
type Player struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"roomId"`
	Name        string      `json:"name"`
	Role        Role        `json:"role"`
	IsSpectator bool        `json:"isSpectator"`
	Points      *PointValue `json:"points,omitempty"`
}
