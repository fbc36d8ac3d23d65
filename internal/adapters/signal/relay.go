package signal

import (
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleSignal forwards the payload untouched; only its envelope is read.
func (ctl *SignalWSController) handleSignal(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	p, err := protocol.DecodePayload[protocol.SignalRelay](msg)
	if err != nil || p.To == "" || len(p.Signal) == 0 {
		log.Warn().Err(err).Str("module", "signal").Str("peer", string(peer)).Msg("bad signal payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Relay.Relay(peer, domain.PeerID(p.To), p.Signal)
}
