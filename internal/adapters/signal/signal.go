package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Zloer/internal/app"
	"github.com/dkeye/Zloer/internal/auth"
	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const (
	// ClaimsKey is the gin context key holding *auth.JoinClaims.
	ClaimsKey = "join_claims"

	writeWait = 5 * time.Second
)

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	SendBuffer     int
	AllowedOrigins []string
	RateLimit      int
	RateInterval   time.Duration
}

type SignalWSController struct {
	Gateway *app.Gateway
	Relay   *app.SignalRelay
	Conns   *app.Registry
	Limiter *RateLimiter

	opts     Options
	upgrader websocket.Upgrader
}

func NewSignalWSController(gw *app.Gateway, relay *app.SignalRelay, conns *app.Registry, opts Options) *SignalWSController {
	if opts.SendBuffer < 1 {
		opts.SendBuffer = 64
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 25 * time.Second
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 64 * 1024
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateInterval <= 0 {
		opts.RateInterval = 10 * time.Second
	}
	ctl := &SignalWSController{
		Gateway: gw,
		Relay:   relay,
		Conns:   conns,
		Limiter: NewRateLimiter(opts.RateLimit, opts.RateInterval),
		opts:    opts,
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin allows every origin when no allow-list is configured.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range ctl.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

type WsSignalConn struct {
	conn   *websocket.Conn
	send   chan core.Frame
	claims *auth.JoinClaims

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and serves one peer until the socket
// closes or ctx ends.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	peer := domain.NewPeerID()
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	if v, ok := c.Get(ClaimsKey); ok {
		conn.claims, _ = v.(*auth.JoinClaims)
	}
	log.Info().
		Str("module", "signal").
		Str("peer", string(peer)).
		Str("client", c.GetString("client_token")).
		Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Conns.Bind(peer, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, peer, conn)
}
