package models

// Room is one estimation session. PlayerIDs holds join order; the creator is
// always first.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PlayerIDs []string `json:"playerIds"`
	Revealed  bool     `json:"revealed"`
}
