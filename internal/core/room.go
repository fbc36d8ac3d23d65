package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/rs/zerolog/log"
)

// Room is a threadsafe in-memory membership set with a host and a lock flag.
// Admission policy lives in the gateway; Room only keeps its own invariant:
// a non-empty room always has a host that is one of its members.
// It never closes adapter-owned resources.
type Room struct {
	id domain.RoomID

	mu      sync.RWMutex
	members map[domain.PeerID]*domain.Member
	host    domain.PeerID
	locked  bool
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:      id,
		members: make(map[domain.PeerID]*domain.Member),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) Has(id domain.PeerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

func (r *Room) Member(id domain.PeerID) (*domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	return m, ok
}

func (r *Room) Host() domain.PeerID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

func (r *Room) IsHost(id domain.PeerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return id != "" && r.host == id
}

func (r *Room) Locked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

func (r *Room) SetLocked(locked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = locked
}

// AddMember inserts m (or replaces the entry with the same id). The first
// member of an empty room becomes its host. It reports whether m is host.
func (r *Room) AddMember(m *domain.Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) == 0 {
		r.host = m.ID
	}
	r.members[m.ID] = m
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("peer", string(m.ID)).Msg("member added")
	return r.host == m.ID
}

// RemoveMember deletes id. When the host leaves and others remain, the
// earliest joined remaining member is promoted and returned as newHost.
func (r *Room) RemoveMember(id domain.PeerID) (removed, newHost *domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed, ok := r.members[id]
	if !ok {
		return nil, nil
	}
	delete(r.members, id)
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("peer", string(id)).Msg("member removed")

	if len(r.members) == 0 {
		r.host = ""
		return removed, nil
	}
	if r.host != id {
		return removed, nil
	}
	for _, m := range r.members {
		if newHost == nil || m.JoinedBefore(newHost) {
			newHost = m
		}
	}
	r.host = newHost.ID
	return removed, newHost
}

// Members returns the members in join order.
func (r *Room) Members() []*domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedBefore(out[j]) })
	return out
}

func (r *Room) MembersSnapshot() []MemberDTO {
	members := r.Members()
	out := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, MemberDTO{ID: m.ID, Nickname: m.Nickname, Timezone: m.Timezone})
	}
	return out
}

func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RoomInfo{ID: r.id, MemberCount: len(r.members), Locked: r.locked}
}
