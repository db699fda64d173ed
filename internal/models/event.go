package models

import "encoding/json"

// Event is the envelope pushed over a room's realtime channel.
// Server to client types are "room:update" and "problem:solved";
// the only client to server type is "join-room".
type Event struct {
	Type    string          `json:"type"`
	Code    string          `json:"code,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewRoomUpdate wraps a full room snapshot.
func NewRoomUpdate(room *Room) *Event {
	payload, _ := json.Marshal(map[string]any{"room": room})
	return &Event{Type: "room:update", Code: room.Code, Payload: payload}
}

// NewProblemSolved wraps a single locked problem.
func NewProblemSolved(code string, problem *RoomProblem) *Event {
	payload, _ := json.Marshal(map[string]any{"problem": problem})
	return &Event{Type: "problem:solved", Code: code, Payload: payload}
}
