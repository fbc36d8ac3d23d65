package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pion/rtp"
)

func TestSourcePackets(t *testing.T) {
	src, err := NewSource("audio", "zloer")
	if err != nil {
		t.Fatal(err)
	}
	first := src.nextPacket()
	second := src.nextPacket()
	if second.SequenceNumber != first.SequenceNumber+1 {
		t.Fatalf("seq %d -> %d", first.SequenceNumber, second.SequenceNumber)
	}
	if second.Timestamp-first.Timestamp != samplesPerFrame {
		t.Fatalf("timestamp step=%d, want %d", second.Timestamp-first.Timestamp, samplesPerFrame)
	}

	src.SetMuted(true)
	if !src.Muted() {
		t.Fatalf("not muted")
	}
	src.skipFrame()
	third := src.nextPacket()
	if third.SequenceNumber != second.SequenceNumber+1 || third.Timestamp-second.Timestamp != 2*samplesPerFrame {
		t.Fatalf("muted gap: seq=%d ts step=%d", third.SequenceNumber, third.Timestamp-second.Timestamp)
	}

	src.Stop()
	src.SetMuted(false)
	if src.GetState() != TrackStateStopped {
		t.Fatalf("unmute revived a stopped source")
	}
}

type fakeReader struct {
	packets chan *rtp.Packet
}

func (f *fakeReader) ReadPacket() (*rtp.Packet, error) {
	pkt, ok := <-f.packets
	if !ok {
		return nil, errors.New("eof")
	}
	return pkt, nil
}

func TestSinkCounts(t *testing.T) {
	sink := NewSink()
	r := &fakeReader{packets: make(chan *rtp.Packet)}
	sink.Attach(context.Background(), "bob", "audio", r)

	r.packets <- &rtp.Packet{Payload: []byte{1, 2, 3}}
	r.packets <- &rtp.Packet{Payload: []byte{4}}
	close(r.packets)

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := sink.Stats()["bob"]
		if st.Packets == 2 {
			if st.Bytes != 4 || st.Kind != "audio" {
				t.Fatalf("stats=%+v", st)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("stats=%+v, want 2 packets", st)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sink.Detach("bob")
	if _, ok := sink.Stats()["bob"]; ok {
		t.Fatalf("stats kept after Detach")
	}
}
