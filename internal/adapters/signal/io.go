package signal

import (
	"context"
	"time"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			// Flush what is queued (a kicked notice, for one) before closing.
			ctl.drain(c)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := ctl.write(c, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) write(c *WsSignalConn, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (ctl *SignalWSController) drain(c *WsSignalConn) {
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := ctl.write(c, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, peer domain.PeerID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("peer", string(peer)).Msg("readPump closing")
		ctl.Gateway.Disconnect(peer)
		ctl.Limiter.Forget(peer)
		cancel()
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			log.Info().Str("module", "signal").Str("peer", string(peer)).Msg("readPump ctx done")
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("peer", string(peer)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		ctl.dispatch(peer, c, data)
	}
}

func (ctl *SignalWSController) dispatch(peer domain.PeerID, c *WsSignalConn, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("peer", string(peer)).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch msg.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(peer, c, msg)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(peer)
	case protocol.TypeSignal:
		ctl.handleSignal(peer, c, msg)
	case protocol.TypeKickUser:
		ctl.handleKick(peer, c, msg)
	case protocol.TypeAdminAction:
		ctl.handleAdmin(peer, c, msg)
	case protocol.TypeChatMessage:
		ctl.handleChat(peer, c, msg)
	case protocol.TypeUserTyping, protocol.TypeUserStopTyping:
		ctl.handleTyping(peer, c, msg.Type == protocol.TypeUserTyping)
	case protocol.TypePlaySound:
		ctl.handleSound(peer, c, msg)
	case protocol.TypePing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", string(msg.Type)).Msg("unknown message")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, t protocol.Type, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, message string) {
	ctl.sendJSON(c, protocol.TypeError, protocol.Error{Message: message})
}
