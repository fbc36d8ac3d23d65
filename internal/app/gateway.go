package app

import (
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

const DefaultMaxParticipants = 6

var ErrUnknownConnection = errors.New("connection is not registered")

type GatewayOptions struct {
	MaxParticipants int
	Policy          Policy
	Now             func() time.Time
}

// Gateway applies admission policy and membership changes. Every event runs
// to completion under one mutex, so a capacity check and the insert that
// follows it can never interleave with another join.
type Gateway struct {
	mu sync.Mutex

	rooms  core.RoomRegistry
	conns  *Registry
	policy Policy
	max    int
	now    func() time.Time
	seq    uint64
}

func NewGateway(rooms core.RoomRegistry, conns *Registry, opts GatewayOptions) *Gateway {
	g := &Gateway{
		rooms:  rooms,
		conns:  conns,
		policy: opts.Policy,
		max:    opts.MaxParticipants,
		now:    opts.Now,
	}
	if g.max < 1 {
		g.max = DefaultMaxParticipants
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

func (g *Gateway) MaxParticipants() int { return g.max }

// roomOfLocked resolves the room the peer is currently in.
func (g *Gateway) roomOfLocked(peer domain.PeerID) (*core.Room, error) {
	roomID, ok := g.conns.RoomOf(peer)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	room, ok := g.rooms.Get(roomID)
	if !ok || !room.Has(peer) {
		return nil, domain.ErrNotInRoom
	}
	return room, nil
}

func (g *Gateway) send(room domain.RoomID, to domain.PeerID, t protocol.Type, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("type", string(t)).Msg("encode")
		return
	}
	g.deliver(room, to, frame)
}

// broadcast sends one encoded frame to every member except skip.
func (g *Gateway) broadcast(room *core.Room, skip domain.PeerID, t protocol.Type, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("type", string(t)).Msg("encode")
		return
	}
	for _, m := range room.Members() {
		if m.ID == skip {
			continue
		}
		g.deliver(room.ID(), m.ID, frame)
	}
}

func (g *Gateway) deliver(room domain.RoomID, to domain.PeerID, frame []byte) {
	conn, ok := g.conns.Conn(to)
	if !ok {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.gateway").Str("room", string(room)).Str("peer", string(to)).Msg("send dropped")
		if g.policy == nil {
			return
		}
		switch g.policy.OnBackPressure(room, to) {
		case KickMember:
			g.conns.Cancel(to)
		case NoAction:
		}
	}
}

func toMemberInfos(members []*domain.Member) []protocol.MemberInfo {
	out := make([]protocol.MemberInfo, 0, len(members))
	for _, m := range members {
		out = append(out, protocol.MemberInfo{PeerID: string(m.ID), Nickname: m.Nickname, Timezone: m.Timezone})
	}
	return out
}

func nicknameOf(m *domain.Member) string {
	if m == nil || m.Nickname == "" {
		return domain.UnknownNickname
	}
	return m.Nickname
}
