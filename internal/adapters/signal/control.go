package signal

import (
	"errors"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, protocol.TypePong, struct{}{})
}

func (ctl *SignalWSController) handleKick(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	p, err := protocol.DecodePayload[protocol.KickUser](msg)
	if err == nil {
		err = protocol.Validate(p)
	}
	if err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Gateway.Kick(peer, domain.PeerID(p.TargetID), p.Reason); err != nil {
		ctl.replyError(conn, err)
	}
}

func (ctl *SignalWSController) handleAdmin(peer domain.PeerID, conn *WsSignalConn, msg protocol.Message) {
	p, err := protocol.DecodePayload[protocol.AdminAction](msg)
	if err == nil {
		err = protocol.Validate(p)
	}
	if err != nil {
		ctl.sendError(conn, "bad_payload")
		return
	}
	if err := ctl.Gateway.Admin(peer, p); err != nil {
		ctl.replyError(conn, err)
	}
}

// replyError maps gateway errors to the message the requester sees.
func (ctl *SignalWSController) replyError(conn *WsSignalConn, err error) {
	var admission *domain.AdmissionError
	var authz *domain.AuthorizationError
	switch {
	case errors.As(err, &admission):
		ctl.sendJSON(conn, protocol.TypeJoinError, protocol.JoinError{
			Type:    string(admission.Reason),
			Message: admission.Error(),
		})
	case errors.As(err, &authz):
		ctl.sendError(conn, "Only the host can do that")
	case errors.Is(err, domain.ErrNotInRoom):
		ctl.sendError(conn, "You are not in a room")
	case errors.Is(err, domain.ErrTargetNotFound):
		ctl.sendError(conn, "User not found in room")
	case errors.Is(err, domain.ErrUnknownAction):
		ctl.sendError(conn, "Unknown admin action")
	default:
		log.Debug().Err(err).Str("module", "signal").Msg("request rejected")
		ctl.sendError(conn, err.Error())
	}
}
