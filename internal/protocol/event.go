package protocol

import "encoding/json"

// EventType tags an engine-to-client event.
type EventType string

const (
	EventLobbySnapshot   EventType = "lobbySnapshot"
	EventRoomCreated     EventType = "roomCreated"
	EventRoomUpdated     EventType = "roomUpdated"
	EventGameStarted     EventType = "gameStarted"
	EventGameStateUpdate EventType = "gameStateUpdate"
	EventGameOver        EventType = "gameOver"
	EventChatMessage     EventType = "chatMessage"
	EventError           EventType = "error"
)

// Event is one engine-to-client notification. Snapshots ride in Data
// as-is; the gateway only serializes them.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// LobbySnapshot lists unseated players and open rooms.
type LobbySnapshot struct {
	Players []string   `json:"players"`
	Rooms   []RoomInfo `json:"rooms"`
}

// RoomInfo is the lobby-facing view of a room.
type RoomInfo struct {
	ID      string   `json:"id"`
	Players []string `json:"players"`
}

// RoomUpdate reports the seat list and readiness of one room.
type RoomUpdate struct {
	ID      string   `json:"id"`
	Players []string `json:"players"`
	Ready   []string `json:"ready"`
}

// GameOver announces the decided match.
type GameOver struct {
	RoomID string `json:"room_id"`
	Winner string `json:"winner"`
}

// Chat carries a relayed room message.
type Chat struct {
	RoomID string `json:"room_id"`
	From   string `json:"from"`
	Text   string `json:"text"`
}

// ErrorInfo is delivered to the issuing client only; the session it
// targeted is left unchanged.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// EncodeEvent serializes an event for the wire.
func EncodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
