package signal

import (
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	if !ctl.Limiter.Allow(peer) {
		log.Warn().Str("module", "signal").Str("peer", string(peer)).Msg("join rate limited")
		ctl.sendError(conn, "Too many requests")
		return
	}
	p, err := protocol.DecodePayload[protocol.JoinRoom](msg)
	if err == nil {
		err = protocol.Validate(p)
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("peer", string(peer)).Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	roomID, err := domain.ParseRoomID(p.RoomID)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	if conn.claims != nil && !conn.claims.AllowsRoom(string(roomID)) {
		log.Warn().Str("module", "signal").Str("peer", string(peer)).Str("room", string(roomID)).Msg("token not valid for room")
		ctl.sendError(conn, "Token is not valid for this room")
		return
	}

	log.Info().Str("module", "signal").Str("peer", string(peer)).Str("room", string(roomID)).Msg("join")
	if err := ctl.Gateway.Join(peer, roomID, p.Nickname, p.Timezone); err != nil {
		ctl.replyError(conn, err)
	}
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(peer domain.PeerID) {
	log.Info().Str("module", "signal").Str("peer", string(peer)).Msg("leave")
	ctl.Gateway.Leave(peer)
}
