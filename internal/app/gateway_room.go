package app

import (
	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join admits peer into roomID. A peer already in another room leaves it
// once admitted; a rejected join changes nothing. A repeated join to the same room refreshes the snapshot without
// announcing the peer again.
func (g *Gateway) Join(peer domain.PeerID, roomID domain.RoomID, nickname, timezone string) error {
	nick, err := domain.NormalizeNickname(nickname)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns.Conn(peer); !ok {
		return ErrUnknownConnection
	}

	room := g.rooms.GetOrCreate(roomID)
	prev, rejoin := room.Member(peer)
	if !rejoin {
		if room.Locked() {
			g.rooms.EvictIfEmpty(roomID)
			return &domain.AdmissionError{Reason: domain.RoomLocked, Room: roomID, Max: g.max}
		}
		if room.MemberCount() >= g.max {
			g.rooms.EvictIfEmpty(roomID)
			return &domain.AdmissionError{Reason: domain.RoomFull, Room: roomID, Max: g.max}
		}
	}

	// The previous room is left only once the new one admitted the peer.
	if cur, ok := g.conns.RoomOf(peer); ok && cur != roomID {
		g.leaveLocked(peer)
		log.Info().Str("module", "app.gateway").Str("peer", string(peer)).Str("from_room", string(cur)).Msg("left previous room")
	}

	existing := make([]string, 0, room.MemberCount())
	for _, m := range room.Members() {
		if m.ID != peer {
			existing = append(existing, string(m.ID))
		}
	}

	var member *domain.Member
	if rejoin {
		member = domain.NewMember(peer, nick, timezone, prev.JoinedAt, prev.Seq)
	} else {
		g.seq++
		member = domain.NewMember(peer, nick, timezone, g.now(), g.seq)
	}
	isHost := room.AddMember(member)
	g.conns.UpdateRoom(peer, roomID)

	g.send(roomID, peer, protocol.TypeExistingUsers, protocol.ExistingUsers(existing))
	if !rejoin {
		g.broadcast(room, peer, protocol.TypeUserJoined, protocol.UserJoined{
			PeerID:   string(peer),
			Nickname: member.Nickname,
			Timezone: member.Timezone,
		})
	}
	g.send(roomID, peer, protocol.TypeRoomInfo, g.roomInfo(room, peer))

	log.Info().
		Str("module", "app.gateway").
		Str("peer", string(peer)).
		Str("room", string(roomID)).
		Bool("host", isHost).
		Bool("rejoin", rejoin).
		Int("members", room.MemberCount()).
		Msg("joined room")
	return nil
}

func (g *Gateway) roomInfo(room *core.Room, viewer domain.PeerID) protocol.RoomInfo {
	host := room.Host()
	return protocol.RoomInfo{
		RoomID:  string(room.ID()),
		Host:    string(host),
		IsHost:  host == viewer,
		Locked:  room.Locked(),
		Members: toMemberInfos(room.Members()),
	}
}

// Leave removes peer from its room, if any, and reports whether it was a member.
func (g *Gateway) Leave(peer domain.PeerID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.leaveLocked(peer)
}

// Disconnect is the implicit leave of a closed connection. It also forgets
// the connection.
func (g *Gateway) Disconnect(peer domain.PeerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.leaveLocked(peer)
	g.conns.Unbind(peer)
}

func (g *Gateway) leaveLocked(peer domain.PeerID) bool {
	roomID, ok := g.conns.RoomOf(peer)
	if !ok {
		return false
	}
	g.conns.RemoveRoom(peer)
	room, ok := g.rooms.Get(roomID)
	if !ok {
		return false
	}
	removed, newHost := room.RemoveMember(peer)
	if removed == nil {
		return false
	}
	log.Info().Str("module", "app.gateway").Str("peer", string(peer)).Str("room", string(roomID)).Msg("left room")

	if g.rooms.EvictIfEmpty(roomID) {
		return true
	}
	if newHost != nil {
		g.broadcast(room, "", protocol.TypeNewHost, protocol.NewHost{
			HostID:       string(newHost.ID),
			HostNickname: nicknameOf(newHost),
		})
		log.Info().Str("module", "app.gateway").Str("room", string(roomID)).Str("host", string(newHost.ID)).Msg("host handed over")
	}
	g.broadcast(room, "", protocol.TypeUserLeft, protocol.UserLeft{
		PeerID:   string(peer),
		Nickname: nicknameOf(removed),
	})
	return true
}
