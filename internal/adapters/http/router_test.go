package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Zloer/internal/app"
	"github.com/dkeye/Zloer/internal/auth"
	"github.com/dkeye/Zloer/internal/config"
	"github.com/dkeye/Zloer/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:            "test",
		Port:            3000,
		MaxParticipants: 2,
		ReadLimit:       64 * 1024,
		PingPeriod:      5 * time.Second,
		SendBuffer:      16,
		Secret:          "test-secret",
		RateLimit:       50,
		RateInterval:    time.Second,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rooms := app.NewRoomManager()
	conns := app.NewRegistry()
	srv := Server{
		Rooms:   rooms,
		Conns:   conns,
		Gateway: app.NewGateway(rooms, conns, app.GatewayOptions{MaxParticipants: cfg.MaxParticipants, Policy: app.SimplePolicy{}}),
		Relay:   app.NewSignalRelay(conns),
	}
	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(SetupRouter(ctx, cfg, srv))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ protocol.Type, payload any) {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// expect reads until a message of typ arrives, skipping others.
func expect(t *testing.T, conn *websocket.Conn, typ protocol.Type) protocol.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func payload[T any](t *testing.T, msg protocol.Message) T {
	t.Helper()
	v, err := protocol.DecodePayload[T](msg)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHealthAndRooms(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status=%d", resp.StatusCode)
	}

	alice := dial(t, ts, "")
	send(t, alice, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "ABC12", Nickname: "Alice"})
	expect(t, alice, protocol.TypeRoomInfo)

	resp, err = http.Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body struct {
		MaxParticipants int `json:"maxParticipants"`
		Rooms           []struct {
			RoomID      string `json:"roomId"`
			MemberCount int    `json:"memberCount"`
		} `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.MaxParticipants != 2 || len(body.Rooms) != 1 || body.Rooms[0].RoomID != "ABC12" || body.Rooms[0].MemberCount != 1 {
		t.Fatalf("rooms=%+v", body)
	}
}

func TestSignalingOverWebsocket(t *testing.T) {
	ts := newTestServer(t, testConfig())
	alice := dial(t, ts, "")
	bob := dial(t, ts, "")
	carol := dial(t, ts, "")

	send(t, alice, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "ABC12", Nickname: "Alice", Timezone: "Europe/Berlin"})
	aliceInfo := payload[protocol.RoomInfo](t, expect(t, alice, protocol.TypeRoomInfo))
	if !aliceInfo.IsHost {
		t.Fatalf("alice is not host: %+v", aliceInfo)
	}
	aliceID := aliceInfo.Host

	send(t, bob, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "ABC12", Nickname: "Bob"})
	existing := payload[protocol.ExistingUsers](t, expect(t, bob, protocol.TypeExistingUsers))
	if len(existing) != 1 || existing[0] != aliceID {
		t.Fatalf("existing-users=%v, want [%s]", existing, aliceID)
	}
	joined := payload[protocol.UserJoined](t, expect(t, alice, protocol.TypeUserJoined))
	bobID := joined.PeerID
	if joined.Nickname != "Bob" {
		t.Fatalf("user-joined=%+v", joined)
	}

	send(t, carol, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "ABC12", Nickname: "Carol"})
	je := payload[protocol.JoinError](t, expect(t, carol, protocol.TypeJoinError))
	if je.Type != "room-full" {
		t.Fatalf("join-error=%+v, want room-full", je)
	}

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	send(t, bob, protocol.TypeSignal, protocol.SignalRelay{To: aliceID, Signal: offer})
	relayed := payload[protocol.SignalRelay](t, expect(t, alice, protocol.TypeSignal))
	if relayed.From != bobID || string(relayed.Signal) != string(offer) {
		t.Fatalf("relayed=%+v", relayed)
	}

	send(t, bob, protocol.TypeKickUser, protocol.KickUser{TargetID: aliceID})
	if e := payload[protocol.Error](t, expect(t, bob, protocol.TypeError)); e.Message == "" {
		t.Fatalf("empty error message")
	}

	alice.Close()
	nh := payload[protocol.NewHost](t, expect(t, bob, protocol.TypeNewHost))
	if nh.HostID != bobID || nh.HostNickname != "Bob" {
		t.Fatalf("new-host=%+v", nh)
	}
	expect(t, bob, protocol.TypeUserLeft)

	send(t, bob, protocol.TypePing, struct{}{})
	expect(t, bob, protocol.TypePong)
}

func TestKickClosesTarget(t *testing.T) {
	ts := newTestServer(t, testConfig())
	host := dial(t, ts, "")
	guest := dial(t, ts, "")

	send(t, host, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "r", Nickname: "Host"})
	expect(t, host, protocol.TypeRoomInfo)
	send(t, guest, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "r", Nickname: "Guest"})
	guestID := payload[protocol.UserJoined](t, expect(t, host, protocol.TypeUserJoined)).PeerID

	send(t, host, protocol.TypeAdminAction, protocol.AdminAction{Action: protocol.ActionKick, TargetID: guestID, Reason: "bye"})
	k := payload[protocol.Kicked](t, expect(t, guest, protocol.TypeKicked))
	if k.Reason != "bye" || k.HostNickname != "Host" {
		t.Fatalf("kicked=%+v", k)
	}
	left := payload[protocol.UserLeft](t, expect(t, host, protocol.TypeUserLeft))
	if left.PeerID != guestID {
		t.Fatalf("user-left=%+v", left)
	}

	_ = guest.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := guest.ReadMessage(); err != nil {
			break
		}
	}
}

func TestOriginAndJoinToken(t *testing.T) {
	cfg := testConfig()
	cfg.CorsOrigins = []string{"http://good.example"}
	cfg.JoinSecret = "join-secret"
	ts := newTestServer(t, cfg)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without token: err=%v", err)
	}

	token, err := auth.Issue(cfg.JoinSecret, "tester", "only-here", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	h := http.Header{}
	h.Set("Origin", "http://evil.example")
	if _, resp, err := websocket.DefaultDialer.Dial(url+"?token="+token, h); err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("dial from bad origin: err=%v", err)
	}

	h.Set("Origin", "http://good.example")
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, h)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	defer conn.Close()

	send(t, conn, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "elsewhere", Nickname: "T"})
	expect(t, conn, protocol.TypeError)
	send(t, conn, protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: "only-here", Nickname: "T"})
	expect(t, conn, protocol.TypeRoomInfo)
}
