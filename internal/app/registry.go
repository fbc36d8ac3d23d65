package app

import (
	"context"
	"sync"

	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry maps live signaling connections to their transport and current room.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.PeerID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.PeerID]*connEntry),
	}
}

// Bind registers a connection. cancel must tear the transport down; it is
// how the server force-disconnects a peer.
func (r *Registry) Bind(id domain.PeerID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("peer", string(id)).Msg("bound connection")
}

func (r *Registry) Conn(id domain.PeerID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) Unbind(id domain.PeerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("peer", string(id)).Msg("unbind connection")
}

func (r *Registry) RoomOf(id domain.PeerID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok || entry.RoomID == "" {
		return "", false
	}
	return entry.RoomID, true
}

func (r *Registry) UpdateRoom(id domain.PeerID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return false
	}
	entry.RoomID = room
	return true
}

func (r *Registry) RemoveRoom(id domain.PeerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[id]; ok {
		entry.RoomID = ""
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Cancel force-disconnects id. The adapter's read loop then reports the
// disconnect, which runs the ordinary leave path.
func (r *Registry) Cancel(id domain.PeerID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("peer", string(id)).Msg("canceled connection")
	return true
}
