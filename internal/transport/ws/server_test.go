package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"actorstage.dev/internal/protocol"
	"actorstage.dev/internal/sim/scene"
)

func startStage(t *testing.T) (*scene.Scene, *httptest.Server) {
	t.Helper()
	st, err := scene.New(scene.StageConfig{ID: "stage_ws", TickRateHz: 50})
	if err != nil {
		t.Fatalf("new scene: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = st.Run(ctx) }()

	logger := log.New(os.Stderr, "[ws-test] ", log.LstdFlags)
	srv := httptest.NewServer(NewServer(st, logger).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return st, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readWelcome(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	var w protocol.WelcomeMsg
	if err := json.Unmarshal(msg, &w); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if w.Type != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %q", w.Type)
	}
	return w
}

func TestHandshakeAndState(t *testing.T) {
	_, srv := startStage(t)
	conn := dial(t, srv)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ActorName:       "alice",
	})

	w := readWelcome(t, conn)
	if w.ActorID == "" || w.ResumeToken == "" {
		t.Fatalf("incomplete welcome: %+v", w)
	}
	if w.StageParams.TickRateHz != 50 {
		t.Fatalf("stage params: %+v", w.StageParams)
	}

	// STATE frames follow every tick.
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	var state protocol.StateMsg
	if err := json.Unmarshal(msg, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.Type != protocol.TypeState || state.ActorID != w.ActorID {
		t.Fatalf("bad state frame: %+v", state)
	}
}

func TestCmdMovesActor(t *testing.T) {
	_, srv := startStage(t)
	conn := dial(t, srv)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ActorName:       "runner",
	})
	w := readWelcome(t, conn)

	readState := func() protocol.StateMsg {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read state: %v", err)
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(msg, &st); err != nil {
			t.Fatalf("unmarshal state: %v", err)
		}
		return st
	}

	throttle := [3]float64{0, 0, 1}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		st := readState()
		if st.Self.Throttle[2] == 1 {
			if st.Self.WorldThrottle[2] != 1 {
				t.Fatalf("world throttle mismatch: %+v", st.Self)
			}
			return
		}
		// Stamp with the freshest observed tick so the command lands
		// inside the acceptance window.
		sendJSON(t, conn, protocol.CmdMsg{
			Type:            protocol.TypeCmd,
			ProtocolVersion: protocol.Version,
			Tick:            st.Tick,
			ActorID:         w.ActorID,
			Intents:         []protocol.IntentReq{{ID: "m1", Type: "MOVE", Throttle: &throttle}},
		})
	}
	t.Fatalf("throttle never applied")
}

func TestResumeToken(t *testing.T) {
	_, srv := startStage(t)

	conn := dial(t, srv)
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ActorName:       "bob",
	})
	w := readWelcome(t, conn)
	_ = conn.Close()

	// Reconnect with the resume token and get the same actor back.
	conn2 := dial(t, srv)
	sendJSON(t, conn2, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ActorName:       "bob",
		Auth:            &protocol.HelloAuth{Token: w.ResumeToken},
	})
	w2 := readWelcome(t, conn2)
	if w2.ActorID != w.ActorID {
		t.Fatalf("resume gave a different actor: %s vs %s", w2.ActorID, w.ActorID)
	}
	if w2.ResumeToken == w.ResumeToken {
		t.Fatalf("resume token must rotate on attach")
	}
}

func TestRejectsBadProtocolVersion(t *testing.T) {
	_, srv := startStage(t)
	conn := dial(t, srv)

	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: "0.0",
		ActorName:       "eve",
	})

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close on bad protocol version")
	}
}
