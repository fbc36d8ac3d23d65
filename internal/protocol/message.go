// Package protocol defines the JSON messages exchanged over the signaling
// websocket. It models the wire surface only and does not depend on any
// WebRTC implementation.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type names a signaling message.
type Type string

const (
	TypeJoinRoom       Type = "join-room"
	TypeLeaveRoom      Type = "leave-room"
	TypeExistingUsers  Type = "existing-users"
	TypeUserJoined     Type = "user-joined"
	TypeUserLeft       Type = "user-left"
	TypeRoomInfo       Type = "room-info"
	TypeSignal         Type = "signal"
	TypeKickUser       Type = "kick-user"
	TypeAdminAction    Type = "admin-action"
	TypeJoinError      Type = "join-error"
	TypeKicked         Type = "kicked"
	TypeNewHost        Type = "new-host"
	TypeRoomStatus     Type = "room-status"
	TypeAdminMuteAll   Type = "admin-mute-all"
	TypeNudge          Type = "nudge"
	TypeError          Type = "error"
	TypeChatMessage    Type = "chat-message"
	TypeUserTyping     Type = "user-typing"
	TypeUserStopTyping Type = "user-stop-typing"
	TypePlaySound      Type = "play-sound"
	TypePing           Type = "ping"
	TypePong           Type = "pong"
)

var ErrMissingType = errors.New("protocol: missing message type")

// Message is the envelope of every frame.
type Message struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps payload into an envelope of type t.
func Encode(t Type, payload any) ([]byte, error) {
	msg := Message{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s: %w", t, err)
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if msg.Type == "" {
		return Message{}, ErrMissingType
	}
	return msg, nil
}

// DecodePayload unmarshals the envelope payload into T. An absent payload
// yields the zero value.
func DecodePayload[T any](msg Message) (T, error) {
	var out T
	if len(msg.Payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return out, fmt.Errorf("protocol: decode %s payload: %w", msg.Type, err)
	}
	return out, nil
}
