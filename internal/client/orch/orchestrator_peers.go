package orch

import (
	"encoding/json"

	"github.com/dkeye/Zloer/internal/client/negotiator"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) createPeer(id domain.PeerID, role negotiator.Role) {
	if old, ok := o.peers[id]; ok {
		old.Close()
		delete(o.peers, id)
	}
	n, err := negotiator.New(negotiator.Options{
		PeerID:        id,
		Role:          role,
		Tracks:        o.opts.Tracks,
		Dial:          o.opts.Dial,
		Send:          o.signalTo(id),
		Post:          o.Post,
		OnRemoteTrack: o.opts.Hooks.OnRemoteTrack,
		OnClosed:      o.onPeerClosed,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "client.orch").Str("peer", string(id)).Msg("create negotiator")
		if o.opts.Hooks.OnPeerFailed != nil {
			o.opts.Hooks.OnPeerFailed(id, err)
		}
		return
	}
	o.peers[id] = n
	if err := n.Start(); err != nil {
		log.Error().Err(err).Str("module", "client.orch").Str("peer", string(id)).Msg("start negotiator")
		n.Close()
		delete(o.peers, id)
		if o.opts.Hooks.OnPeerFailed != nil {
			o.opts.Hooks.OnPeerFailed(id, err)
		}
		return
	}
	log.Info().Str("module", "client.orch").Str("peer", string(id)).Str("role", role.String()).Msg("peer created")
}

func (o *Orchestrator) closePeer(id domain.PeerID) {
	n, ok := o.peers[id]
	if !ok {
		return
	}
	n.Close()
	delete(o.peers, id)
	log.Info().Str("module", "client.orch").Str("peer", string(id)).Msg("peer closed")
}

// onPeerClosed runs on the loop when a connection failed on its own.
func (o *Orchestrator) onPeerClosed(id domain.PeerID, reason error) {
	delete(o.peers, id)
	if o.opts.Hooks.OnPeerFailed != nil {
		o.opts.Hooks.OnPeerFailed(id, reason)
	}
}

func (o *Orchestrator) signalTo(id domain.PeerID) func(protocol.Signal) {
	return func(sig protocol.Signal) {
		raw, err := json.Marshal(sig)
		if err != nil {
			log.Error().Err(err).Str("module", "client.orch").Str("peer", string(id)).Msg("encode signal")
			return
		}
		if err := o.opts.Signal.Send(protocol.TypeSignal, protocol.SignalRelay{To: string(id), Signal: raw}); err != nil {
			log.Warn().Err(err).Str("module", "client.orch").Str("peer", string(id)).Str("kind", string(sig.Kind)).Msg("send signal")
		}
	}
}

func (o *Orchestrator) routeSignal(p protocol.SignalRelay) {
	from := domain.PeerID(p.From)
	n, ok := o.peers[from]
	if !ok {
		log.Debug().Str("module", "client.orch").Str("peer", p.From).Msg("signal for unknown peer dropped")
		return
	}
	var sig protocol.Signal
	if err := json.Unmarshal(p.Signal, &sig); err != nil {
		log.Warn().Err(err).Str("module", "client.orch").Str("peer", p.From).Msg("bad signal")
		return
	}
	if err := n.HandleSignal(sig); err != nil {
		log.Warn().Err(err).Str("module", "client.orch").Str("peer", p.From).Str("kind", string(sig.Kind)).Msg("handle signal")
	}
}
