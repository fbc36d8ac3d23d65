// Package orch creates and destroys peer negotiators from room membership
// events. The newcomer initiates toward everyone already present; incumbents
// answer, so every pair has exactly one initiator.
package orch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dkeye/Zloer/internal/client/negotiator"
	"github.com/dkeye/Zloer/internal/client/signal"
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var ErrKicked = errors.New("kicked from room")

// JoinRejectedError ends a session the server refused to admit.
type JoinRejectedError struct {
	Reason  string
	Message string
}

func (e *JoinRejectedError) Error() string {
	return fmt.Sprintf("join rejected (%s): %s", e.Reason, e.Message)
}

// Signaler sends one message to the signaling server.
type Signaler interface {
	Send(t protocol.Type, payload any) error
}

// Hooks are user visible notifications. They run on the event loop and
// must not block.
type Hooks struct {
	OnRoomInfo    func(protocol.RoomInfo)
	OnNewHost     func(protocol.NewHost)
	OnRoomStatus  func(protocol.RoomStatus)
	OnMuteAll     func(protocol.HostNotice)
	OnNudge       func(protocol.HostNotice)
	OnKicked      func(protocol.Kicked)
	OnJoinError   func(protocol.JoinError)
	OnChat        func(protocol.ChatOut)
	OnError       func(protocol.Error)
	OnPeerJoined  func(protocol.UserJoined)
	OnPeerLeft    func(protocol.UserLeft)
	OnPeerFailed  func(peer domain.PeerID, reason error)
	OnRemoteTrack func(peer domain.PeerID, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
}

type Options struct {
	RoomID   domain.RoomID
	Nickname string
	Timezone string
	Tracks   []webrtc.TrackLocal
	Dial     negotiator.Dialer
	Signal   Signaler
	Hooks    Hooks
}

type Orchestrator struct {
	opts  Options
	tasks chan func()
	done  chan struct{}

	// owned by the loop goroutine
	peers map[domain.PeerID]*negotiator.Negotiator
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:  opts,
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
		peers: make(map[domain.PeerID]*negotiator.Negotiator),
	}
}

// Post schedules fn on the event loop. It is a no-op once the loop ended.
func (o *Orchestrator) Post(fn func()) {
	select {
	case o.tasks <- fn:
	case <-o.done:
	}
}

// call runs fn on the loop and waits for it. On error fn may still be
// running, so whatever fn writes must only be read after a nil return.
func (o *Orchestrator) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		fn()
		close(finished)
	}
	select {
	case o.tasks <- task:
	case <-o.done:
		return negotiator.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-o.done:
		return negotiator.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run is the event loop. It returns when ctx ends, events closes, or the
// server ends the session (ErrKicked, *JoinRejectedError).
func (o *Orchestrator) Run(ctx context.Context, events <-chan signal.Event) error {
	defer close(o.done)
	defer o.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-o.tasks:
			fn()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := o.handleEvent(ev); err != nil {
				return err
			}
		}
	}
}

func (o *Orchestrator) handleEvent(ev signal.Event) error {
	switch ev.Kind {
	case signal.EventConnected:
		// A new connection is a new identity on the server: every pairwise
		// link is rebuilt from the fresh snapshot.
		o.closeAll()
		return o.join()
	case signal.EventDisconnected:
		log.Warn().Err(ev.Err).Str("module", "client.orch").Int("peers", len(o.peers)).Msg("signaling lost")
		return nil
	case signal.EventMessage:
		return o.handleMessage(ev.Msg)
	}
	return nil
}

func (o *Orchestrator) join() error {
	err := o.opts.Signal.Send(protocol.TypeJoinRoom, protocol.JoinRoom{
		RoomID:   string(o.opts.RoomID),
		Nickname: o.opts.Nickname,
		Timezone: o.opts.Timezone,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "client.orch").Msg("send join-room")
		return nil
	}
	log.Info().Str("module", "client.orch").Str("room", string(o.opts.RoomID)).Msg("join sent")
	return nil
}

// Leave exits the room but keeps the connection.
func (o *Orchestrator) Leave(ctx context.Context) error {
	return o.call(ctx, func() {
		o.closeAll()
		if err := o.opts.Signal.Send(protocol.TypeLeaveRoom, struct{}{}); err != nil {
			log.Warn().Err(err).Str("module", "client.orch").Msg("send leave-room")
		}
	})
}

// ReplaceTrack swaps the outgoing source of kind on every peer and reports
// how many peers had a sender of that kind.
func (o *Orchestrator) ReplaceTrack(ctx context.Context, kind webrtc.RTPCodecType, track webrtc.TrackLocal) (int, error) {
	var replaced int
	var errs []error
	err := o.call(ctx, func() {
		for id, n := range o.peers {
			ok, err := n.ReplaceTrack(kind, track)
			if err != nil {
				errs = append(errs, fmt.Errorf("peer %s: %w", id, err))
				continue
			}
			if ok {
				replaced++
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return replaced, errors.Join(errs...)
}

type PeerInfo struct {
	ID     domain.PeerID
	Role   negotiator.Role
	Status negotiator.Status
}

func (o *Orchestrator) Peers(ctx context.Context) ([]PeerInfo, error) {
	var out []PeerInfo
	err := o.call(ctx, func() {
		for id, n := range o.peers {
			out = append(out, PeerInfo{ID: id, Role: n.Role(), Status: n.Status()})
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (o *Orchestrator) closeAll() {
	for id, n := range o.peers {
		n.Close()
		delete(o.peers, id)
	}
}
