package domain

import (
	"time"

	"github.com/google/uuid"
)

// PeerID identifies one signaling connection. A reconnecting client gets a new one.
type PeerID string

func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	ID       PeerID
	Nickname string
	Timezone string
	JoinedAt time.Time
	// Seq orders members that share a JoinedAt value.
	Seq uint64
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(id PeerID, nickname, timezone string, joinedAt time.Time, seq uint64) *Member {
	return &Member{
		ID:       id,
		Nickname: nickname,
		Timezone: NormalizeTimezone(timezone),
		JoinedAt: joinedAt,
		Seq:      seq,
	}
}

// JoinedBefore reports whether m joined strictly earlier than other.
func (m *Member) JoinedBefore(other *Member) bool {
	if !m.JoinedAt.Equal(other.JoinedAt) {
		return m.JoinedAt.Before(other.JoinedAt)
	}
	return m.Seq < other.Seq
}
