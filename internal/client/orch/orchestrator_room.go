package orch

import (
	"github.com/dkeye/Zloer/internal/client/negotiator"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleMessage(msg protocol.Message) error {
	switch msg.Type {
	case protocol.TypeExistingUsers:
		ids, err := protocol.DecodePayload[protocol.ExistingUsers](msg)
		if err != nil {
			return o.badPayload(msg, err)
		}
		for _, id := range ids {
			o.createPeer(domain.PeerID(id), negotiator.Initiator)
		}

	case protocol.TypeUserJoined:
		p, err := protocol.DecodePayload[protocol.UserJoined](msg)
		if err != nil {
			return o.badPayload(msg, err)
		}
		o.createPeer(domain.PeerID(p.PeerID), negotiator.Responder)
		notify(o.opts.Hooks.OnPeerJoined, p)

	case protocol.TypeUserLeft:
		p, err := protocol.DecodePayload[protocol.UserLeft](msg)
		if err != nil {
			return o.badPayload(msg, err)
		}
		o.closePeer(domain.PeerID(p.PeerID))
		notify(o.opts.Hooks.OnPeerLeft, p)

	case protocol.TypeSignal:
		p, err := protocol.DecodePayload[protocol.SignalRelay](msg)
		if err != nil {
			return o.badPayload(msg, err)
		}
		o.routeSignal(p)

	case protocol.TypeKicked:
		p, _ := protocol.DecodePayload[protocol.Kicked](msg)
		o.closeAll()
		notify(o.opts.Hooks.OnKicked, p)
		log.Warn().Str("module", "client.orch").Str("reason", p.Reason).Str("host", p.HostNickname).Msg("kicked")
		return ErrKicked

	case protocol.TypeJoinError:
		p, _ := protocol.DecodePayload[protocol.JoinError](msg)
		o.closeAll()
		notify(o.opts.Hooks.OnJoinError, p)
		return &JoinRejectedError{Reason: p.Type, Message: p.Message}

	case protocol.TypeRoomInfo:
		return decodeNotify(o, msg, o.opts.Hooks.OnRoomInfo)
	case protocol.TypeNewHost:
		return decodeNotify(o, msg, o.opts.Hooks.OnNewHost)
	case protocol.TypeRoomStatus:
		return decodeNotify(o, msg, o.opts.Hooks.OnRoomStatus)
	case protocol.TypeAdminMuteAll:
		return decodeNotify(o, msg, o.opts.Hooks.OnMuteAll)
	case protocol.TypeNudge:
		return decodeNotify(o, msg, o.opts.Hooks.OnNudge)
	case protocol.TypeChatMessage:
		return decodeNotify(o, msg, o.opts.Hooks.OnChat)
	case protocol.TypeError:
		return decodeNotify(o, msg, o.opts.Hooks.OnError)

	case protocol.TypePong, protocol.TypeUserTyping, protocol.TypeUserStopTyping, protocol.TypePlaySound:
	default:
		log.Debug().Str("module", "client.orch").Str("type", string(msg.Type)).Msg("unhandled message")
	}
	return nil
}

func (o *Orchestrator) badPayload(msg protocol.Message, err error) error {
	log.Warn().Err(err).Str("module", "client.orch").Str("type", string(msg.Type)).Msg("bad payload")
	return nil
}

func notify[T any](hook func(T), v T) {
	if hook != nil {
		hook(v)
	}
}

func decodeNotify[T any](o *Orchestrator, msg protocol.Message, hook func(T)) error {
	v, err := protocol.DecodePayload[T](msg)
	if err != nil {
		return o.badPayload(msg, err)
	}
	notify(hook, v)
	return nil
}
