package negotiator

import (
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/pion/webrtc/v4"
)

func descriptionSignal(d webrtc.SessionDescription) protocol.Signal {
	if d.Type == webrtc.SDPTypeAnswer {
		return protocol.Answer(d.SDP)
	}
	return protocol.Offer(d.SDP)
}

func signalDescription(s protocol.Signal) webrtc.SessionDescription {
	t := webrtc.SDPTypeOffer
	if s.Kind == protocol.SignalAnswer {
		t = webrtc.SDPTypeAnswer
	}
	return webrtc.SessionDescription{Type: t, SDP: s.Description.SDP}
}

func candidateSignal(c webrtc.ICECandidateInit) protocol.Signal {
	return protocol.Candidate(protocol.ICECandidate{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	})
}

func signalCandidate(s protocol.Signal) webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:        s.Candidate.Candidate,
		SDPMid:           s.Candidate.SDPMid,
		SDPMLineIndex:    s.Candidate.SDPMLineIndex,
		UsernameFragment: s.Candidate.UsernameFragment,
	}
}
