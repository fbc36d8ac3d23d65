package core

import (
	"github.com/dkeye/Zloer/internal/domain"
)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID       domain.PeerID `json:"peerId"`
	Nickname string        `json:"nickname"`
	Timezone string        `json:"timezone"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	Locked      bool          `json:"locked"`
}

// RoomRegistry stores rooms by id. It performs no admission checks;
// callers own the create/evict lifecycle.
type RoomRegistry interface {
	GetOrCreate(id domain.RoomID) *Room
	Get(id domain.RoomID) (*Room, bool)
	// EvictIfEmpty drops the room when it has no members and reports whether it did.
	EvictIfEmpty(id domain.RoomID) bool
	List() []RoomInfo
}
