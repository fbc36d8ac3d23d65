// Package media holds the headless participant's local audio source and
// the sink draining remote tracks.
package media

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type TrackState int32

const (
	TrackStateOk TrackState = iota
	TrackStateMuted
	TrackStateStopped
)

const (
	opusPayloadType = 111
	frameDuration   = 20 * time.Millisecond
	// 48kHz clock, 20ms per frame.
	samplesPerFrame = 960
)

// opusSilence is a single 20ms Opus frame of silence.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// Source is an outgoing Opus track that carries silence. Muting stops
// packets without renegotiating.
type Source struct {
	Track *webrtc.TrackLocalStaticRTP
	state atomic.Int32 // Zero by default (TrackStateOk)

	mu        sync.Mutex
	seq       uint16
	timestamp uint32
	ssrc      uint32
}

func NewSource(id, streamID string) (*Source, error) {
	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		id, streamID,
	)
	if err != nil {
		return nil, err
	}
	return &Source{
		Track:     track,
		seq:       uint16(rand.UintN(1 << 16)),
		timestamp: rand.Uint32(),
		ssrc:      rand.Uint32(),
	}, nil
}

func (s *Source) GetState() TrackState { return TrackState(s.state.Load()) }
func (s *Source) Muted() bool          { return s.GetState() == TrackStateMuted }

func (s *Source) SetMuted(muted bool) {
	if s.GetState() == TrackStateStopped {
		return
	}
	if muted {
		s.state.Store(int32(TrackStateMuted))
		return
	}
	s.state.Store(int32(TrackStateOk))
}

func (s *Source) Stop() { s.state.Store(int32(TrackStateStopped)) }

// nextPacket builds the next frame. The RTP clock keeps advancing while
// muted so the receiver sees the gap as elapsed time.
func (s *Source) nextPacket() *rtp.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    opusPayloadType,
			SequenceNumber: s.seq,
			Timestamp:      s.timestamp,
			SSRC:           s.ssrc,
			Marker:         false,
		},
		Payload: opusSilence,
	}
	s.seq++
	s.timestamp += samplesPerFrame
	return pkt
}

func (s *Source) skipFrame() {
	s.mu.Lock()
	s.timestamp += samplesPerFrame
	s.mu.Unlock()
}

// Run writes one frame every 20ms until ctx ends or the source is stopped.
func (s *Source) Run(ctx context.Context) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		switch s.GetState() {
		case TrackStateStopped:
			return
		case TrackStateMuted:
			s.skipFrame()
		case TrackStateOk:
			if err := s.Track.WriteRTP(s.nextPacket()); err != nil {
				log.Debug().Err(err).Str("module", "client.media").Msg("source write RTP")
			}
		}
	}
}
