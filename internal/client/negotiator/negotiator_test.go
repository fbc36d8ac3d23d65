package negotiator

import (
	"errors"
	"testing"

	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/pion/webrtc/v4"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	mc     *MockMediaConnection
	events Events
	sent   []protocol.Signal
	closed []error
}

func newNegotiator(t *testing.T, role Role) (*Negotiator, *fixture) {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{mc: NewMockMediaConnection(ctrl)}
	n, err := New(Options{
		PeerID: "remote",
		Role:   role,
		Dial: func(ev Events) (MediaConnection, error) {
			f.events = ev
			return f.mc, nil
		},
		Send: func(s protocol.Signal) { f.sent = append(f.sent, s) },
		OnClosed: func(_ domain.PeerID, reason error) {
			f.closed = append(f.closed, reason)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n, f
}

func offerDesc(sdp string) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}
}

func answerDesc(sdp string) webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp}
}

func cand(s string) protocol.Signal {
	return protocol.Candidate(protocol.ICECandidate{Candidate: s})
}

func TestInitiatorOfferAnswer(t *testing.T) {
	n, f := newNegotiator(t, Initiator)
	gomock.InOrder(
		f.mc.EXPECT().CreateOffer().Return(offerDesc("o1"), nil),
		f.mc.EXPECT().ApplyAnswer(answerDesc("a1")).Return(nil),
	)

	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n.Status() != StatusNegotiating {
		t.Fatalf("status=%s, want NEGOTIATING", n.Status())
	}
	if len(f.sent) != 1 || f.sent[0].Kind != protocol.SignalOffer || f.sent[0].Description.SDP != "o1" {
		t.Fatalf("sent=%+v, want one offer", f.sent)
	}

	// negotiation-needed while the offer is outstanding does not offer again
	f.events.OnNegotiationNeeded()
	if len(f.sent) != 1 {
		t.Fatalf("sent a second offer while one is outstanding")
	}

	if err := n.HandleSignal(protocol.Answer("a1")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if n.Status() != StatusStable {
		t.Fatalf("status=%s, want STABLE", n.Status())
	}

	// a duplicate answer is stale
	if err := n.HandleSignal(protocol.Answer("a1")); err != nil {
		t.Fatalf("stale answer: %v", err)
	}
}

func TestInitiatorRenegotiates(t *testing.T) {
	n, f := newNegotiator(t, Initiator)
	gomock.InOrder(
		f.mc.EXPECT().CreateOffer().Return(offerDesc("o1"), nil),
		f.mc.EXPECT().ApplyAnswer(answerDesc("a1")).Return(nil),
		f.mc.EXPECT().CreateOffer().Return(offerDesc("o2"), nil),
		f.mc.EXPECT().ApplyAnswer(answerDesc("a2")).Return(nil),
	)
	n.Start()
	n.HandleSignal(protocol.Answer("a1"))

	f.events.OnNegotiationNeeded()
	if n.Status() != StatusRenegotiating {
		t.Fatalf("status=%s, want RENEGOTIATING", n.Status())
	}
	if err := n.HandleSignal(protocol.Answer("a2")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if n.Status() != StatusStable || len(f.sent) != 2 {
		t.Fatalf("status=%s sent=%d", n.Status(), len(f.sent))
	}
}

func TestResponderQueuesEarlyCandidates(t *testing.T) {
	n, f := newNegotiator(t, Responder)
	gomock.InOrder(
		f.mc.EXPECT().ApplyOffer(offerDesc("o1")).Return(answerDesc("a1"), nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "c1"}).Return(nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "c2"}).Return(nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "c3"}).Return(nil),
	)

	n.Start()
	if n.Status() != StatusAwaitingOffer {
		t.Fatalf("status=%s, want AWAITING_OFFER", n.Status())
	}
	if err := n.HandleSignal(cand("c1")); err != nil {
		t.Fatal(err)
	}
	if err := n.HandleSignal(cand("c2")); err != nil {
		t.Fatal(err)
	}
	if err := n.HandleSignal(protocol.Offer("o1")); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if err := n.HandleSignal(cand("c3")); err != nil {
		t.Fatal(err)
	}
	if n.Status() != StatusStable {
		t.Fatalf("status=%s, want STABLE", n.Status())
	}
	if len(f.sent) != 1 || f.sent[0].Kind != protocol.SignalAnswer || f.sent[0].Description.SDP != "a1" {
		t.Fatalf("sent=%+v, want one answer", f.sent)
	}
}

func TestRejectedQueuedCandidateDoesNotStall(t *testing.T) {
	n, f := newNegotiator(t, Responder)
	gomock.InOrder(
		f.mc.EXPECT().ApplyOffer(offerDesc("o1")).Return(answerDesc("a1"), nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "bad"}).Return(errors.New("bad candidate")),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "good"}).Return(nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "late"}).Return(nil),
	)

	n.Start()
	for _, c := range []string{"bad", "good"} {
		if err := n.HandleSignal(cand(c)); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.HandleSignal(protocol.Offer("o1")); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if n.Status() != StatusStable {
		t.Fatalf("status=%s, want STABLE", n.Status())
	}
	if len(f.sent) != 1 || f.sent[0].Kind != protocol.SignalAnswer {
		t.Fatalf("sent=%+v, want the answer", f.sent)
	}
	if len(n.pending) != 0 {
		t.Fatalf("pending=%d after flush, want 0", len(n.pending))
	}
	if err := n.HandleSignal(cand("late")); err != nil {
		t.Fatal(err)
	}
}

func TestInitiatorFlushesAfterRejectedCandidate(t *testing.T) {
	n, f := newNegotiator(t, Initiator)
	gomock.InOrder(
		f.mc.EXPECT().CreateOffer().Return(offerDesc("o1"), nil),
		f.mc.EXPECT().ApplyAnswer(answerDesc("a1")).Return(nil),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "bad"}).Return(errors.New("bad candidate")),
		f.mc.EXPECT().AddICECandidate(webrtc.ICECandidateInit{Candidate: "good"}).Return(nil),
	)

	if err := n.Start(); err != nil {
		t.Fatal(err)
	}
	n.HandleSignal(cand("bad"))
	n.HandleSignal(cand("good"))
	if err := n.HandleSignal(protocol.Answer("a1")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if n.Status() != StatusStable || len(n.pending) != 0 {
		t.Fatalf("status=%s pending=%d, want STABLE and empty queue", n.Status(), len(n.pending))
	}
}

func TestResponderNeverOffers(t *testing.T) {
	n, f := newNegotiator(t, Responder)
	n.Start()
	f.events.OnNegotiationNeeded()
	if len(f.sent) != 0 {
		t.Fatalf("responder sent %+v", f.sent)
	}
	// an answer without an outstanding offer is stale
	if err := n.HandleSignal(protocol.Answer("a")); err != nil {
		t.Fatalf("stale answer: %v", err)
	}
	if n.Status() != StatusAwaitingOffer {
		t.Fatalf("status=%s, want AWAITING_OFFER", n.Status())
	}
}

func TestStableAcceptsNewOffer(t *testing.T) {
	n, f := newNegotiator(t, Responder)
	gomock.InOrder(
		f.mc.EXPECT().ApplyOffer(offerDesc("o1")).Return(answerDesc("a1"), nil),
		f.mc.EXPECT().ApplyOffer(offerDesc("o2")).Return(answerDesc("a2"), nil),
	)
	n.Start()
	n.HandleSignal(protocol.Offer("o1"))
	if err := n.HandleSignal(protocol.Offer("o2")); err != nil {
		t.Fatal(err)
	}
	if n.Status() != StatusStable || len(f.sent) != 2 {
		t.Fatalf("status=%s sent=%d", n.Status(), len(f.sent))
	}
}

func TestFailureTearsDown(t *testing.T) {
	n, f := newNegotiator(t, Initiator)
	f.mc.EXPECT().CreateOffer().Return(offerDesc("o1"), nil)
	f.mc.EXPECT().Close().Return(nil).Times(1)
	n.Start()

	f.events.OnStateChange(webrtc.PeerConnectionStateDisconnected)
	if n.Status() == StatusClosed {
		t.Fatalf("disconnected must not tear down")
	}

	f.events.OnStateChange(webrtc.PeerConnectionStateFailed)
	if n.Status() != StatusClosed {
		t.Fatalf("status=%s, want CLOSED", n.Status())
	}
	if len(f.closed) != 1 || !errors.Is(f.closed[0], ErrConnectionFailed) {
		t.Fatalf("closed=%v", f.closed)
	}

	// the closed state that follows our own Close is not reported again
	f.events.OnStateChange(webrtc.PeerConnectionStateClosed)
	n.Close()
	if len(f.closed) != 1 {
		t.Fatalf("closed reported %d times", len(f.closed))
	}
	if err := n.HandleSignal(protocol.Answer("a")); !errors.Is(err, ErrClosed) {
		t.Fatalf("err=%v, want ErrClosed", err)
	}
	f.events.OnLocalCandidate(webrtc.ICECandidateInit{Candidate: "late"})
	if len(f.sent) != 1 {
		t.Fatalf("closed negotiator sent %+v", f.sent[1:])
	}
}

func TestReplaceTrack(t *testing.T) {
	n, f := newNegotiator(t, Responder)
	f.mc.EXPECT().ReplaceTrack(webrtc.RTPCodecTypeVideo, nil).Return(false, nil)
	ok, err := n.ReplaceTrack(webrtc.RTPCodecTypeVideo, nil)
	if err != nil || ok {
		t.Fatalf("ReplaceTrack=%v,%v, want false,nil", ok, err)
	}

	f.mc.EXPECT().Close().Return(nil)
	n.Close()
	if _, err := n.ReplaceTrack(webrtc.RTPCodecTypeAudio, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("err=%v, want ErrClosed", err)
	}
}

func TestLocalCandidatesRelayed(t *testing.T) {
	_, f := newNegotiator(t, Responder)
	mid := "0"
	f.events.OnLocalCandidate(webrtc.ICECandidateInit{Candidate: "c", SDPMid: &mid})
	if len(f.sent) != 1 || f.sent[0].Kind != protocol.SignalCandidate || *f.sent[0].Candidate.SDPMid != "0" {
		t.Fatalf("sent=%+v", f.sent)
	}
}
