package rtc

import (
	"errors"
	"fmt"

	"github.com/dkeye/Zloer/internal/client/negotiator"
	"github.com/pion/transport/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func DefaultWebRTCConfig(iceServers ...string) webrtc.Configuration {
	if len(iceServers) == 0 {
		iceServers = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: iceServers}},
	}
}

type APIOptions struct {
	UDPPortMin uint16
	UDPPortMax uint16
	// Net replaces the OS network stack, a vnet in tests.
	Net transport.Net
}

// NewAPI builds a pion API with the default codecs and logs bridged to zerolog.
func NewAPI(opts APIOptions) (*webrtc.API, error) {
	se := webrtc.SettingEngine{}
	se.LoggerFactory = NewLoggerFactory()
	if opts.UDPPortMin != 0 || opts.UDPPortMax != 0 {
		if err := se.SetEphemeralUDPPortRange(opts.UDPPortMin, opts.UDPPortMax); err != nil {
			return nil, fmt.Errorf("set ephemeral udp port range: %w", err)
		}
	}
	if opts.Net != nil {
		se.SetNet(opts.Net)
	}

	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	return webrtc.NewAPI(
		webrtc.WithSettingEngine(se),
		webrtc.WithMediaEngine(mediaEngine),
	), nil
}

// WebRTCConnection adapts a pion PeerConnection to negotiator.MediaConnection.
type WebRTCConnection struct {
	pc *webrtc.PeerConnection
}

var _ negotiator.MediaConnection = (*WebRTCConnection)(nil)

// NewDialer returns a negotiator.Dialer creating connections from api.
func NewDialer(api *webrtc.API, cfg webrtc.Configuration) negotiator.Dialer {
	return func(ev negotiator.Events) (negotiator.MediaConnection, error) {
		return NewWebRTCConnection(api, cfg, ev)
	}
}

func NewWebRTCConnection(api *webrtc.API, cfg webrtc.Configuration, ev negotiator.Events) (*WebRTCConnection, error) {
	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	c := &WebRTCConnection{pc: pc}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && ev.OnLocalCandidate != nil {
			ev.OnLocalCandidate(cand.ToJSON())
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		if ev.OnRemoteTrack != nil {
			ev.OnRemoteTrack(track, receiver)
		}
	})
	pc.OnNegotiationNeeded(func() {
		if ev.OnNegotiationNeeded != nil {
			ev.OnNegotiationNeeded()
		}
	})
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if ev.OnStateChange != nil {
			ev.OnStateChange(s)
		}
	})
	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Debug().Str("module", "webrtc").Str("ice_state", s.String()).Msg("ICE state")
	})
	return c, nil
}

func (c *WebRTCConnection) CreateOffer() (webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return offer, nil
}

func (c *WebRTCConnection) ApplyOffer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

func (c *WebRTCConnection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

func (c *WebRTCConnection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// AddTrack attaches a local track and drains its RTCP so interceptors keep running.
func (c *WebRTCConnection) AddTrack(track webrtc.TrackLocal) error {
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return err
	}
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (c *WebRTCConnection) ReplaceTrack(kind webrtc.RTPCodecType, track webrtc.TrackLocal) (bool, error) {
	for _, tr := range c.pc.GetTransceivers() {
		if tr.Kind() != kind || tr.Sender() == nil {
			continue
		}
		if err := tr.Sender().ReplaceTrack(track); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

func (c *WebRTCConnection) ConnectionState() webrtc.PeerConnectionState {
	return c.pc.ConnectionState()
}

func (c *WebRTCConnection) Close() error {
	if err := c.pc.Close(); err != nil && !errors.Is(err, webrtc.ErrConnectionClosed) {
		return err
	}
	return nil
}
