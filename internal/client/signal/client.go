// Package signal is the participant side of the signaling websocket. It
// redials after a drop and reports each (re)connection as an event.
package signal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 64 * 1024
)

var (
	ErrNotConnected = errors.New("signaling: not connected")
	ErrBackpressure = errors.New("signaling: send buffer full")
)

type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventMessage
)

type Event struct {
	Kind EventKind
	Msg  protocol.Message
	Err  error
}

type Options struct {
	URL        string
	Header     http.Header
	MinBackoff time.Duration
	MaxBackoff time.Duration
	PingPeriod time.Duration
	SendBuffer int
}

// Client owns at most one live websocket at a time.
type Client struct {
	opts   Options
	dialer *websocket.Dialer
	events chan Event

	mu  sync.Mutex
	out chan []byte
}

func NewClient(opts Options) *Client {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = 10 * time.Second
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = (pongWait * 9) / 10
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	return &Client{
		opts:   opts,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		events: make(chan Event, 64),
	}
}

// Events is closed when Run returns.
func (c *Client) Events() <-chan Event { return c.events }

// Send queues a message on the current connection.
func (c *Client) Send(t protocol.Type, payload any) error {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return ErrNotConnected
	}
	select {
	case c.out <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

// Run dials, serves and redials until ctx ends.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)
	backoff := c.opts.MinBackoff
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Str("module", "client.signal").Dur("retry_in", backoff).Msg("dial failed")
		} else {
			backoff = c.opts.MinBackoff
			err = c.serve(ctx, conn)
			if ctx.Err() != nil {
				return nil
			}
			if !c.emit(ctx, Event{Kind: EventDisconnected, Err: err}) {
				return nil
			}
			log.Warn().Err(err).Str("module", "client.signal").Msg("connection lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}
}

func (c *Client) emit(ctx context.Context, ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// serve runs one connection and returns why it ended.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	out := make(chan []byte, c.opts.SendBuffer)
	c.mu.Lock()
	c.out = out
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.out = nil
		c.mu.Unlock()
	}()

	if !c.emit(ctx, Event{Kind: EventConnected}) {
		_ = conn.Close()
		return ctx.Err()
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(connCtx, conn, out)
	}()

	err := c.readPump(ctx, conn)
	cancel()
	_ = conn.Close()
	<-writerDone
	return err
}

func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "client.signal").Msg("bad frame")
			continue
		}
		if !c.emit(ctx, Event{Kind: EventMessage, Msg: msg}) {
			return ctx.Err()
		}
	}
}

func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, out <-chan []byte) {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}
	}
}
