package protocol

import (
	"encoding/json"
	"time"
)

type JoinRoom struct {
	RoomID   string `json:"roomId" validate:"required,max=64"`
	Nickname string `json:"nickname" validate:"required,max=36"`
	Timezone string `json:"timezone,omitempty" validate:"max=64"`
}

// ExistingUsers is sent as a bare JSON array of peer ids.
type ExistingUsers []string

type UserJoined struct {
	PeerID   string `json:"peerId"`
	Nickname string `json:"nickname"`
	Timezone string `json:"timezone"`
}

type UserLeft struct {
	PeerID   string `json:"peerId"`
	Nickname string `json:"nickname"`
}

type MemberInfo struct {
	PeerID   string `json:"peerId"`
	Nickname string `json:"nickname"`
	Timezone string `json:"timezone"`
}

type RoomInfo struct {
	RoomID  string       `json:"roomId"`
	Host    string       `json:"host"`
	IsHost  bool         `json:"isHost"`
	Locked  bool         `json:"locked"`
	Members []MemberInfo `json:"members"`
}

// SignalRelay carries an opaque negotiation payload. Clients set To,
// the server replaces it with From before forwarding.
type SignalRelay struct {
	To     string          `json:"to,omitempty"`
	From   string          `json:"from,omitempty"`
	Signal json.RawMessage `json:"signal"`
}

type KickUser struct {
	TargetID string `json:"targetId" validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=200"`
}

type AdminActionKind string

const (
	ActionKick     AdminActionKind = "kick"
	ActionMuteAll  AdminActionKind = "mute-all"
	ActionRoomLock AdminActionKind = "room-lock"
	ActionNudgeAll AdminActionKind = "nudge-all"
)

type AdminAction struct {
	Action   AdminActionKind `json:"action" validate:"required"`
	TargetID string          `json:"targetId,omitempty"`
	Reason   string          `json:"reason,omitempty" validate:"max=200"`
	Locked   *bool           `json:"locked,omitempty"`
}

type JoinError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Kicked struct {
	Reason       string `json:"reason"`
	HostNickname string `json:"hostNickname"`
}

type NewHost struct {
	HostID       string `json:"hostId"`
	HostNickname string `json:"hostNickname"`
}

type RoomStatus struct {
	Locked       bool   `json:"locked"`
	HostNickname string `json:"hostNickname"`
}

// HostNotice is the payload of admin-mute-all and nudge.
type HostNotice struct {
	HostNickname string `json:"hostNickname"`
}

type Error struct {
	Message string `json:"message"`
}

type ChatIn struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type ChatOut struct {
	From      string    `json:"from"`
	Nickname  string    `json:"nickname"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Typing struct {
	PeerID   string `json:"peerId"`
	Nickname string `json:"nickname"`
}

type SoundIn struct {
	Sound string `json:"sound" validate:"required,max=64"`
}

type SoundOut struct {
	Sound    string `json:"sound"`
	Nickname string `json:"nickname"`
}
