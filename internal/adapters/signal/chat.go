package signal

import (
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleChat(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	if !ctl.Limiter.Allow(peer) {
		log.Warn().Str("module", "signal").Str("peer", string(peer)).Msg("chat rate limited")
		ctl.sendError(conn, "Too many requests")
		return
	}
	p, err := protocol.DecodePayload[protocol.ChatIn](msg)
	if err == nil {
		err = protocol.Validate(p)
	}
	if err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Gateway.Chat(peer, p.Message); err != nil {
		ctl.replyError(conn, err)
	}
}

func (ctl *SignalWSController) handleTyping(peer domain.PeerID, conn *WsSignalConn, typing bool) {
	if err := ctl.Gateway.Typing(peer, typing); err != nil {
		ctl.replyError(conn, err)
	}
}

func (ctl *SignalWSController) handleSound(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	if !ctl.Limiter.Allow(peer) {
		ctl.sendError(conn, "Too many requests")
		return
	}
	p, err := protocol.DecodePayload[protocol.SoundIn](msg)
	if err == nil {
		err = protocol.Validate(p)
	}
	if err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Gateway.PlaySound(peer, p.Sound); err != nil {
		ctl.replyError(conn, err)
	}
}
