package media

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// PacketReader yields RTP packets of one remote track.
type PacketReader interface {
	ReadPacket() (*rtp.Packet, error)
}

// TrackReader adapts a pion remote track.
type TrackReader struct {
	Track *webrtc.TrackRemote
}

func (r TrackReader) ReadPacket() (*rtp.Packet, error) {
	pkt, _, err := r.Track.ReadRTP()
	return pkt, err
}

type TrackStats struct {
	Kind     string    `json:"kind"`
	Packets  uint64    `json:"packets"`
	Bytes    uint64    `json:"bytes"`
	LastSeen time.Time `json:"lastSeen"`
}

type sinkEntry struct {
	cancel context.CancelFunc
	stats  TrackStats
}

// Sink drains remote tracks and keeps per peer counters. Nothing is
// decoded or played.
type Sink struct {
	mu    sync.RWMutex
	peers map[domain.PeerID]*sinkEntry
	now   func() time.Time
}

func NewSink() *Sink {
	return &Sink{peers: make(map[domain.PeerID]*sinkEntry), now: time.Now}
}

// Attach starts reading r for peer. A previous reader of peer is stopped.
func (s *Sink) Attach(ctx context.Context, peer domain.PeerID, kind string, r PacketReader) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if old, ok := s.peers[peer]; ok {
		old.cancel()
	}
	s.peers[peer] = &sinkEntry{cancel: cancel, stats: TrackStats{Kind: kind}}
	s.mu.Unlock()

	go s.loop(ctx, peer, r)
}

func (s *Sink) loop(ctx context.Context, peer domain.PeerID, r PacketReader) {
	logger := log.With().Str("module", "client.media").Str("peer", string(peer)).Logger()
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("sink ctx done")
			return
		default:
		}
		pkt, err := r.ReadPacket()
		if err != nil {
			logger.Debug().Err(err).Msg("sink read RTP, stopping")
			return
		}
		s.record(peer, len(pkt.Payload))
	}
}

func (s *Sink) record(peer domain.PeerID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.peers[peer]
	if !ok {
		return
	}
	e.stats.Packets++
	e.stats.Bytes += uint64(n)
	e.stats.LastSeen = s.now()
}

// Detach stops reading for peer and forgets its counters.
func (s *Sink) Detach(peer domain.PeerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.peers[peer]; ok {
		e.cancel()
		delete(s.peers, peer)
	}
}

func (s *Sink) Stats() map[domain.PeerID]TrackStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[domain.PeerID]*sinkEntry, len(s.peers))
	maps.Copy(snapshot, s.peers)
	out := make(map[domain.PeerID]TrackStats, len(snapshot))
	for id, e := range snapshot {
		out[id] = e.stats
	}
	return out
}
