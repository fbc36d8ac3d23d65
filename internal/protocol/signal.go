package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "candidate"
)

var (
	errUnknownSignal = errors.New("protocol: unknown signal")
	errMissingSDP    = errors.New("protocol: missing session description sdp")
	errEmptySignal   = errors.New("protocol: empty signal")
)

// SessionDescription is a JSON-friendly SDP offer or answer.
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// ICECandidate mirrors the browser RTCIceCandidateInit shape.
type ICECandidate struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

// Signal is the closed variant Offer | Answer | Candidate carried inside a
// relayed signal message. Exactly one of Description and Candidate is set.
type Signal struct {
	Kind        SignalKind
	Description *SessionDescription
	Candidate   *ICECandidate
}

func Offer(sdp string) Signal {
	return Signal{Kind: SignalOffer, Description: &SessionDescription{Type: string(SignalOffer), SDP: sdp}}
}

func Answer(sdp string) Signal {
	return Signal{Kind: SignalAnswer, Description: &SessionDescription{Type: string(SignalAnswer), SDP: sdp}}
}

func Candidate(c ICECandidate) Signal {
	return Signal{Kind: SignalCandidate, Candidate: &c}
}

func (s Signal) Validate() error {
	switch s.Kind {
	case SignalOffer, SignalAnswer:
		if s.Description == nil || s.Description.SDP == "" {
			return errMissingSDP
		}
		return nil
	case SignalCandidate:
		if s.Candidate == nil {
			return errEmptySignal
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownSignal, s.Kind)
	}
}

func (s Signal) MarshalJSON() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Kind == SignalCandidate {
		return json.Marshal(s.Candidate)
	}
	return json.Marshal(SessionDescription{Type: string(s.Kind), SDP: s.Description.SDP})
}

// UnmarshalJSON accepts the shapes browsers put on the wire: descriptions
// carry a type, candidates carry a candidate field.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type      string  `json:"type"`
		SDP       string  `json:"sdp"`
		Candidate *string `json:"candidate"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("protocol: decode signal: %w", err)
	}

	var out Signal
	switch {
	case probe.Type == string(SignalOffer) || probe.Type == string(SignalAnswer):
		out = Signal{
			Kind:        SignalKind(probe.Type),
			Description: &SessionDescription{Type: probe.Type, SDP: probe.SDP},
		}
	case probe.Type != "":
		return fmt.Errorf("%w: %q", errUnknownSignal, probe.Type)
	case probe.Candidate != nil:
		var c ICECandidate
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("protocol: decode candidate: %w", err)
		}
		out = Candidate(c)
	default:
		return errEmptySignal
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}
