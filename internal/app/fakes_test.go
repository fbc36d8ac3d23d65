package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Zloer/internal/core"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
)

var errFull = errors.New("send buffer full")

type fakeConn struct {
	mu       sync.Mutex
	frames   []protocol.Message
	full     bool
	canceled bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errFull
	}
	msg, err := protocol.Decode(f)
	if err != nil {
		return err
	}
	c.frames = append(c.frames, msg)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) types() []protocol.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Type, 0, len(c.frames))
	for _, m := range c.frames {
		out = append(out, m.Type)
	}
	return out
}

// take returns and clears the received messages.
func (c *fakeConn) take() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.frames
	c.frames = nil
	return out
}

func (c *fakeConn) wasCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}

type harness struct {
	t     *testing.T
	rooms *RoomManagerImpl
	conns *Registry
	gw    *Gateway
	fakes map[domain.PeerID]*fakeConn
}

func newHarness(t *testing.T, max int) *harness {
	t.Helper()
	rooms := NewRoomManager()
	conns := NewRegistry()
	return &harness{
		t:     t,
		rooms: rooms,
		conns: conns,
		gw:    NewGateway(rooms, conns, GatewayOptions{MaxParticipants: max, Policy: SimplePolicy{}}),
		fakes: make(map[domain.PeerID]*fakeConn),
	}
}

func (h *harness) connect(id domain.PeerID) *fakeConn {
	c := &fakeConn{}
	h.fakes[id] = c
	h.conns.Bind(id, c, func() {
		c.mu.Lock()
		c.canceled = true
		c.mu.Unlock()
	})
	return c
}

func (h *harness) join(id domain.PeerID, room domain.RoomID, nick string) error {
	h.t.Helper()
	return h.gw.Join(id, room, nick, "")
}

func mustPayload[T any](t *testing.T, msg protocol.Message) T {
	t.Helper()
	v, err := protocol.DecodePayload[T](msg)
	if err != nil {
		t.Fatalf("decode %s: %v", msg.Type, err)
	}
	return v
}

func findType(msgs []protocol.Message, typ protocol.Type) (protocol.Message, bool) {
	for _, m := range msgs {
		if m.Type == typ {
			return m, true
		}
	}
	return protocol.Message{}, false
}
