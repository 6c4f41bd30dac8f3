// Package protocol defines the command-in/event-out contract between
// the engine and whatever transport carries it. Commands form a closed
// set of tagged variants, each carrying only its required fields, so
// malformed shapes are rejected at the boundary.
package protocol

import (
	"encoding/json"
	"fmt"
)

// CommandType tags a command variant.
type CommandType string

const (
	CmdIdentify         CommandType = "identify"
	CmdCreateRoom       CommandType = "createRoom"
	CmdJoinRoom         CommandType = "joinRoom"
	CmdReady            CommandType = "ready"
	CmdAddBot           CommandType = "addBot"
	CmdDraw             CommandType = "draw"
	CmdPlayToField      CommandType = "playToField"
	CmdAttackMonster    CommandType = "attackMonster"
	CmdAttackShield     CommandType = "attackShield"
	CmdRegenerateShield CommandType = "regenerateShield"
	CmdEndPhase         CommandType = "endPhase"
	CmdLeaveRoom        CommandType = "leaveRoom"
	CmdChatMessage      CommandType = "chatMessage"
)

// Command is one client request, validated and applied atomically.
type Command interface {
	CommandType() CommandType
}

// Identify binds a player name to the issuing connection.
type Identify struct {
	Name string `json:"name"`
}

func (Identify) CommandType() CommandType { return CmdIdentify }

// CreateRoom opens a new room with the caller in the first seat.
type CreateRoom struct{}

func (CreateRoom) CommandType() CommandType { return CmdCreateRoom }

// JoinRoom seats the caller in an existing room.
type JoinRoom struct {
	RoomID string `json:"room_id"`
}

func (JoinRoom) CommandType() CommandType { return CmdJoinRoom }

// Ready reports the caller's readiness in their room.
type Ready struct {
	RoomID string `json:"room_id"`
}

func (Ready) CommandType() CommandType { return CmdReady }

// AddBot seats the built-in scripted opponent in the caller's room.
type AddBot struct {
	RoomID string `json:"room_id"`
}

func (AddBot) CommandType() CommandType { return CmdAddBot }

// Draw draws one card during the caller's draw phase.
type Draw struct {
	RoomID string `json:"room_id"`
}

func (Draw) CommandType() CommandType { return CmdDraw }

// PlayToField plays a hand card into an empty zone during main phase.
type PlayToField struct {
	RoomID    string `json:"room_id"`
	HandIndex int    `json:"hand_index"`
	ZoneIndex int    `json:"zone_index"`
}

func (PlayToField) CommandType() CommandType { return CmdPlayToField }

// AttackMonster resolves combat between two occupied zones.
type AttackMonster struct {
	RoomID        string `json:"room_id"`
	AttackerIndex int    `json:"attacker_index"`
	DefenderIndex int    `json:"defender_index"`
}

func (AttackMonster) CommandType() CommandType { return CmdAttackMonster }

// AttackShield breaks one of the opponent's intact shields.
type AttackShield struct {
	RoomID      string `json:"room_id"`
	TargetIndex int    `json:"target_index"`
}

func (AttackShield) CommandType() CommandType { return CmdAttackShield }

// RegenerateShield discards an ace to repair a broken shield.
type RegenerateShield struct {
	RoomID string `json:"room_id"`
}

func (RegenerateShield) CommandType() CommandType { return CmdRegenerateShield }

// EndPhase advances the caller's turn to the next phase.
type EndPhase struct {
	RoomID string `json:"room_id"`
}

func (EndPhase) CommandType() CommandType { return CmdEndPhase }

// LeaveRoom vacates the caller's seat.
type LeaveRoom struct{}

func (LeaveRoom) CommandType() CommandType { return CmdLeaveRoom }

// ChatMessage relays a text message to everyone seated in the room.
type ChatMessage struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

func (ChatMessage) CommandType() CommandType { return CmdChatMessage }

// envelope is the wire frame around a command payload.
type envelope struct {
	Type CommandType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeCommand parses a wire frame into its typed command. Unknown
// command types and malformed payloads are rejected here, before any
// state is touched.
func DecodeCommand(raw []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed command frame: %w", err)
	}

	var cmd Command
	switch env.Type {
	case CmdIdentify:
		cmd = &Identify{}
	case CmdCreateRoom:
		cmd = &CreateRoom{}
	case CmdJoinRoom:
		cmd = &JoinRoom{}
	case CmdReady:
		cmd = &Ready{}
	case CmdAddBot:
		cmd = &AddBot{}
	case CmdDraw:
		cmd = &Draw{}
	case CmdPlayToField:
		cmd = &PlayToField{}
	case CmdAttackMonster:
		cmd = &AttackMonster{}
	case CmdAttackShield:
		cmd = &AttackShield{}
	case CmdRegenerateShield:
		cmd = &RegenerateShield{}
	case CmdEndPhase:
		cmd = &EndPhase{}
	case CmdLeaveRoom:
		cmd = &LeaveRoom{}
	case CmdChatMessage:
		cmd = &ChatMessage{}
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, cmd); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", env.Type, err)
		}
	}

	return cmd, nil
}

// EncodeCommand wraps a typed command back into its wire frame.
func EncodeCommand(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: cmd.CommandType(), Data: data})
}
