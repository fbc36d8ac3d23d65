package app

import (
	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

const defaultKickReason = "Removed by host"

// Kick lets the host remove target from the room. The target is told why and
// then disconnected; its leave is processed when the transport closes.
func (g *Gateway) Kick(requester, target domain.PeerID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, err := g.hostRoomLocked(requester, string(protocol.ActionKick))
	if err != nil {
		return err
	}
	return g.kickLocked(room, requester, target, reason)
}

// Admin performs a host-only room action.
func (g *Gateway) Admin(requester domain.PeerID, action protocol.AdminAction) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, err := g.hostRoomLocked(requester, string(action.Action))
	if err != nil {
		return err
	}
	host, _ := room.Member(requester)

	switch action.Action {
	case protocol.ActionKick:
		return g.kickLocked(room, requester, domain.PeerID(action.TargetID), action.Reason)
	case protocol.ActionMuteAll:
		g.broadcast(room, requester, protocol.TypeAdminMuteAll, protocol.HostNotice{HostNickname: nicknameOf(host)})
	case protocol.ActionNudgeAll:
		g.broadcast(room, requester, protocol.TypeNudge, protocol.HostNotice{HostNickname: nicknameOf(host)})
	case protocol.ActionRoomLock:
		locked := action.Locked != nil && *action.Locked
		room.SetLocked(locked)
		g.broadcast(room, "", protocol.TypeRoomStatus, protocol.RoomStatus{Locked: locked, HostNickname: nicknameOf(host)})
	default:
		return domain.ErrUnknownAction
	}
	log.Info().
		Str("module", "app.gateway").
		Str("room", string(room.ID())).
		Str("peer", string(requester)).
		Str("action", string(action.Action)).
		Msg("admin action")
	return nil
}

func (g *Gateway) hostRoomLocked(requester domain.PeerID, action string) (*core.Room, error) {
	room, err := g.roomOfLocked(requester)
	if err != nil {
		return nil, err
	}
	if !room.IsHost(requester) {
		log.Warn().
			Str("module", "app.gateway").
			Str("room", string(room.ID())).
			Str("peer", string(requester)).
			Str("action", action).
			Msg("host-only action from non-host")
		return nil, &domain.AuthorizationError{Reason: domain.NotHost, Requester: requester, Action: action}
	}
	return room, nil
}

func (g *Gateway) kickLocked(room *core.Room, requester, target domain.PeerID, reason string) error {
	if target == "" || target == requester || !room.Has(target) {
		return domain.ErrTargetNotFound
	}
	if reason == "" {
		reason = defaultKickReason
	}
	host, _ := room.Member(requester)
	g.send(room.ID(), target, protocol.TypeKicked, protocol.Kicked{Reason: reason, HostNickname: nicknameOf(host)})
	g.conns.Cancel(target)
	log.Info().
		Str("module", "app.gateway").
		Str("room", string(room.ID())).
		Str("peer", string(requester)).
		Str("target", string(target)).
		Msg("kicked member")
	return nil
}
