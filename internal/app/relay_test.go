package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Zloer/internal/protocol"
)

func TestRelayForwardsVerbatim(t *testing.T) {
	conns := NewRegistry()
	bob := &fakeConn{}
	conns.Bind("bob", bob, func() {})
	relay := NewSignalRelay(conns)

	payload := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	if !relay.Relay("alice", "bob", payload) {
		t.Fatalf("relay reported drop")
	}
	msgs := bob.take()
	if len(msgs) != 1 || msgs[0].Type != protocol.TypeSignal {
		t.Fatalf("bob got %v", msgs)
	}
	got := mustPayload[protocol.SignalRelay](t, msgs[0])
	if got.From != "alice" || got.To != "" {
		t.Fatalf("relay=%+v, want from alice and no to", got)
	}
	if string(got.Signal) != string(payload) {
		t.Fatalf("signal=%s, want %s", got.Signal, payload)
	}
}

func TestRelayDropsMissingTarget(t *testing.T) {
	relay := NewSignalRelay(NewRegistry())
	if relay.Relay("alice", "gone", json.RawMessage(`{}`)) {
		t.Fatalf("relay to a missing target must drop")
	}
}
