// Package negotiator drives the offer/answer/candidate exchange of one
// pairwise peer connection.
package negotiator

import (
	"errors"
	"fmt"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrClosed           = errors.New("negotiator closed")
	ErrConnectionFailed = errors.New("peer connection failed")
	ErrConnectionClosed = errors.New("peer connection closed unexpectedly")
)

type Options struct {
	PeerID domain.PeerID
	Role   Role
	Tracks []webrtc.TrackLocal
	Dial   Dialer
	// Send relays a signal to PeerID.
	Send func(protocol.Signal)
	// Post runs fn on the owner's event loop. Nil runs it inline.
	Post func(fn func())
	// OnRemoteTrack is called from a media goroutine.
	OnRemoteTrack func(peer domain.PeerID, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	// OnClosed reports a teardown caused by the connection itself.
	OnClosed func(peer domain.PeerID, reason error)
}

// Negotiator is the state machine of one remote participant. It is not
// safe for concurrent use: every method must run on the event loop that
// Options.Post feeds.
type Negotiator struct {
	opts    Options
	mc      MediaConnection
	status  Status
	pending []webrtc.ICECandidateInit

	hasLocal  bool
	hasRemote bool

	log zerolog.Logger
}

// New allocates the media connection and attaches the local tracks.
func New(opts Options) (*Negotiator, error) {
	if opts.Dial == nil || opts.Send == nil {
		return nil, errors.New("negotiator: Dial and Send are required")
	}
	n := &Negotiator{
		opts:   opts,
		status: StatusNew,
		log: log.With().
			Str("module", "client.negotiator").
			Str("peer", string(opts.PeerID)).
			Str("role", opts.Role.String()).
			Logger(),
	}

	mc, err := opts.Dial(Events{
		OnLocalCandidate: func(c webrtc.ICECandidateInit) {
			n.post(func() { n.onLocalCandidate(c) })
		},
		OnRemoteTrack: func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
			n.log.Info().Str("kind", track.Kind().String()).Str("track_id", track.ID()).Msg("remote track")
			if opts.OnRemoteTrack != nil {
				opts.OnRemoteTrack(opts.PeerID, track, receiver)
			}
		},
		OnNegotiationNeeded: func() {
			n.post(n.onNegotiationNeeded)
		},
		OnStateChange: func(s webrtc.PeerConnectionState) {
			n.post(func() { n.onStateChange(s) })
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dial peer connection: %w", err)
	}
	n.mc = mc

	for _, t := range opts.Tracks {
		if err := mc.AddTrack(t); err != nil {
			_ = mc.Close()
			return nil, fmt.Errorf("add %s track: %w", t.Kind(), err)
		}
	}
	return n, nil
}

func (n *Negotiator) PeerID() domain.PeerID { return n.opts.PeerID }
func (n *Negotiator) Role() Role            { return n.opts.Role }
func (n *Negotiator) Status() Status        { return n.status }

func (n *Negotiator) post(fn func()) {
	if n.opts.Post == nil {
		fn()
		return
	}
	n.opts.Post(fn)
}

// Start moves out of NEW: the initiator sends its offer, the responder
// waits for one.
func (n *Negotiator) Start() error {
	if n.status != StatusNew {
		return nil
	}
	if n.opts.Role == Responder {
		n.setStatus(StatusAwaitingOffer)
		return nil
	}
	return n.offer(StatusNegotiating)
}

func (n *Negotiator) offer(next Status) error {
	n.setStatus(next)
	offer, err := n.mc.CreateOffer()
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	n.hasLocal = true
	n.opts.Send(descriptionSignal(offer))
	return nil
}

// HandleSignal applies a payload relayed from the remote peer. Stale
// descriptions are discarded; candidates are never dropped for ordering.
func (n *Negotiator) HandleSignal(sig protocol.Signal) error {
	if n.status == StatusClosed {
		return ErrClosed
	}
	if err := sig.Validate(); err != nil {
		return err
	}

	switch sig.Kind {
	case protocol.SignalOffer:
		if !n.status.acceptsOffer() {
			n.log.Debug().Str("status", n.status.String()).Msg("stale offer discarded")
			return nil
		}
		answer, err := n.mc.ApplyOffer(signalDescription(sig))
		if err != nil {
			return fmt.Errorf("apply offer: %w", err)
		}
		n.hasRemote, n.hasLocal = true, true
		n.opts.Send(descriptionSignal(answer))
		n.setStatus(StatusStable)
		n.flushCandidates()

	case protocol.SignalAnswer:
		if !n.status.offerOutstanding() {
			n.log.Debug().Str("status", n.status.String()).Msg("stale answer discarded")
			return nil
		}
		if err := n.mc.ApplyAnswer(signalDescription(sig)); err != nil {
			return fmt.Errorf("apply answer: %w", err)
		}
		n.hasRemote = true
		n.setStatus(StatusStable)
		n.flushCandidates()

	case protocol.SignalCandidate:
		c := signalCandidate(sig)
		if !n.hasRemote {
			n.pending = append(n.pending, c)
			n.log.Debug().Int("queued", len(n.pending)).Msg("candidate queued")
			return nil
		}
		if err := n.mc.AddICECandidate(c); err != nil {
			return fmt.Errorf("add candidate: %w", err)
		}
	}
	return nil
}

// flushCandidates applies queued candidates in arrival order. A rejected
// candidate is logged and the rest are still applied.
func (n *Negotiator) flushCandidates() {
	queued := n.pending
	n.pending = nil
	for _, c := range queued {
		if err := n.mc.AddICECandidate(c); err != nil {
			n.log.Warn().Err(err).Str("candidate", c.Candidate).Msg("queued candidate rejected")
		}
	}
}

// ReplaceTrack swaps the outgoing source of kind without renegotiating.
func (n *Negotiator) ReplaceTrack(kind webrtc.RTPCodecType, track webrtc.TrackLocal) (bool, error) {
	if n.status == StatusClosed {
		return false, ErrClosed
	}
	return n.mc.ReplaceTrack(kind, track)
}

// Close tears the connection down. It is safe to call more than once.
func (n *Negotiator) Close() {
	if n.status == StatusClosed {
		return
	}
	n.setStatus(StatusClosed)
	n.pending = nil
	if err := n.mc.Close(); err != nil {
		n.log.Warn().Err(err).Msg("close peer connection")
	}
}

func (n *Negotiator) setStatus(s Status) {
	if n.status == s {
		return
	}
	n.log.Debug().Str("from", n.status.String()).Str("to", s.String()).Msg("status")
	n.status = s
}

func (n *Negotiator) onLocalCandidate(c webrtc.ICECandidateInit) {
	if n.status == StatusClosed {
		return
	}
	n.opts.Send(candidateSignal(c))
}

func (n *Negotiator) onNegotiationNeeded() {
	if n.opts.Role != Initiator {
		return
	}
	if n.status != StatusStable {
		n.log.Debug().Str("status", n.status.String()).Msg("negotiation needed ignored")
		return
	}
	if err := n.offer(StatusRenegotiating); err != nil {
		n.log.Error().Err(err).Msg("renegotiate")
	}
}

func (n *Negotiator) onStateChange(s webrtc.PeerConnectionState) {
	n.log.Info().Str("state", s.String()).Msg("connection state")
	switch s {
	case webrtc.PeerConnectionStateFailed:
		n.teardown(ErrConnectionFailed)
	case webrtc.PeerConnectionStateClosed:
		n.teardown(ErrConnectionClosed)
	}
}

func (n *Negotiator) teardown(reason error) {
	if n.status == StatusClosed {
		return
	}
	n.log.Warn().Err(reason).Msg("peer connection lost")
	n.Close()
	if n.opts.OnClosed != nil {
		n.opts.OnClosed(n.opts.PeerID, reason)
	}
}
