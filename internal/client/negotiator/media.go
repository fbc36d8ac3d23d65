package negotiator

import "github.com/pion/webrtc/v4"

// MediaConnection is the part of a peer connection the negotiator drives.
// Offers and answers returned by it are already set as local description.
type MediaConnection interface {
	CreateOffer() (webrtc.SessionDescription, error)
	// ApplyOffer sets the remote offer and returns the local answer.
	ApplyOffer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error)
	ApplyAnswer(answer webrtc.SessionDescription) error
	AddICECandidate(c webrtc.ICECandidateInit) error
	AddTrack(track webrtc.TrackLocal) error
	// ReplaceTrack swaps the source of the first sender of kind. It reports
	// false when there is no such sender.
	ReplaceTrack(kind webrtc.RTPCodecType, track webrtc.TrackLocal) (bool, error)
	Close() error
}

// Events are raised from the media stack's own goroutines.
type Events struct {
	OnLocalCandidate    func(webrtc.ICECandidateInit)
	OnRemoteTrack       func(*webrtc.TrackRemote, *webrtc.RTPReceiver)
	OnNegotiationNeeded func()
	OnStateChange       func(webrtc.PeerConnectionState)
}

// Dialer allocates a MediaConnection wired to events.
type Dialer func(events Events) (MediaConnection, error)
