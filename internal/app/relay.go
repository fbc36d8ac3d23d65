package app

import (
	"encoding/json"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

// SignalRelay forwards negotiation payloads between two connections. It never
// looks inside the payload.
type SignalRelay struct {
	conns *Registry
}

func NewSignalRelay(conns *Registry) *SignalRelay {
	return &SignalRelay{conns: conns}
}

// Relay tags payload with from and queues it for to. A target that already
// disconnected is an expected race: the message is dropped and false returned.
func (r *SignalRelay) Relay(from, to domain.PeerID, payload json.RawMessage) bool {
	conn, ok := r.conns.Conn(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Msg("relay target gone, dropped")
		return false
	}
	frame, err := protocol.Encode(protocol.TypeSignal, protocol.SignalRelay{From: string(from), Signal: payload})
	if err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("from", string(from)).Msg("relay encode")
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.relay").Str("from", string(from)).Str("to", string(to)).Msg("relay send dropped")
		return false
	}
	return true
}
