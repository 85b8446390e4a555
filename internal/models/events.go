package models

// Domain event names as they appear on the wire.
const (
	EventPlayerJoined  = "playerJoined"
	EventPointsChosen  = "pointsChosen"
	EventCardsRevealed = "cardsRevealed"
	EventRoomReset     = "roomReset"
	EventPlayerLeft    = "playerLeft"
)

// PlayerJoined is published when a player joins an existing room.
type PlayerJoined struct {
	RoomID string `json:"roomId"`
	Player Player `json:"player"`
}

// PointsChosen is published when a player picks a card. SequenceNumber is a
// process-wide monotonic counter; subscribers use it only to discard
// duplicate deliveries, it carries no cross-room ordering.
type PointsChosen struct {
	RoomID         string     `json:"roomId"`
	PlayerID       string     `json:"playerId"`
	Points         PointValue `json:"points"`
	SequenceNumber uint64     `json:"sequenceNumber"`
}

// CardsRevealed is published when the room's cards are turned face up.
type CardsRevealed struct {
	RoomID string `json:"roomId"`
}

// RoomReset carries the post-reset snapshot of the room and its players.
type RoomReset struct {
	Room       Room     `json:"room"`
	Players    []Player `json:"players"`
	ResetCount uint64   `json:"resetCount"`
}

// PlayerLeft is published when a player is removed from a room.
type PlayerLeft struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}
