// Package scenetest drives a stage through its exported API only: joins
// go through StepOnce, commands are protocol CmdMsg envelopes, and
// per-actor Out channels carry STATE JSON. Tests here cover whole-tick
// behavior that package-level unit tests cannot see.
package scenetest

import (
	"encoding/json"
	"testing"

	"actorstage.dev/internal/protocol"
	"actorstage.dev/internal/sim/scene"
)

type Harness struct {
	T  *testing.T
	St *scene.Scene

	DefaultActorID string

	sessions map[string]*session
}

type session struct {
	ActorID   string
	Out       chan []byte
	lastState protocol.StateMsg
}

func NewHarness(t *testing.T, cfg scene.StageConfig, actorName string) *Harness {
	t.Helper()

	st, err := scene.New(cfg)
	if err != nil {
		t.Fatalf("scene.New: %v", err)
	}

	h := &Harness{
		T:        t,
		St:       st,
		sessions: map[string]*session{},
	}
	h.DefaultActorID = h.Join(actorName)
	return h
}

// NewHarnessWithScene is like NewHarness but uses an already-constructed
// scene, e.g. one restored from a snapshot before the first join.
func NewHarnessWithScene(t *testing.T, st *scene.Scene, actorName string) *Harness {
	t.Helper()
	if st == nil {
		t.Fatalf("NewHarnessWithScene: nil scene")
	}

	h := &Harness{
		T:        t,
		St:       st,
		sessions: map[string]*session{},
	}
	h.DefaultActorID = h.Join(actorName)
	return h
}

func (h *Harness) Join(actorName string) string {
	h.T.Helper()

	out := make(chan []byte, 16)
	resp := make(chan scene.JoinResponse, 1)
	h.St.StepOnce([]scene.JoinRequest{{
		Name: actorName,
		Out:  out,
		Resp: resp,
	}}, nil, nil)
	jr := <-resp
	if jr.Welcome.ActorID == "" {
		h.T.Fatalf("join returned empty actor id")
	}
	s := &session{ActorID: jr.Welcome.ActorID, Out: out}
	h.sessions[s.ActorID] = s
	h.drainAllStates()
	return s.ActorID
}

func (h *Harness) LastState() protocol.StateMsg {
	return h.LastStateFor(h.DefaultActorID)
}

func (h *Harness) LastStateFor(actorID string) protocol.StateMsg {
	h.T.Helper()
	s := h.sessions[actorID]
	if s == nil {
		h.T.Fatalf("unknown actor id: %q", actorID)
	}
	return s.lastState
}

func (h *Harness) Step(intents []protocol.IntentReq, controls []protocol.ControlReq) protocol.StateMsg {
	return h.StepFor(h.DefaultActorID, intents, controls)
}

func (h *Harness) StepFor(actorID string, intents []protocol.IntentReq, controls []protocol.ControlReq) protocol.StateMsg {
	h.T.Helper()
	cmd := protocol.CmdMsg{
		Type:            protocol.TypeCmd,
		ProtocolVersion: protocol.Version,
		Tick:            h.St.CurrentTick(),
		ActorID:         actorID,
		Intents:         intents,
		Controls:        controls,
	}
	h.St.StepOnce(nil, nil, []scene.CmdEnvelope{{ActorID: actorID, Cmd: cmd}})
	h.drainAllStates()
	return h.LastStateFor(actorID)
}

func (h *Harness) StepNoop() protocol.StateMsg {
	h.T.Helper()
	h.St.StepOnce(nil, nil, nil)
	h.drainAllStates()
	return h.LastState()
}

func (h *Harness) StepN(n int) protocol.StateMsg {
	h.T.Helper()
	// Drain every tick so the bounded Out channels never drop frames.
	for i := 0; i < n; i++ {
		h.St.StepOnce(nil, nil, nil)
		h.drainAllStates()
	}
	return h.LastState()
}

func (h *Harness) drainAllStates() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOneState(s)
	}
}

func (h *Harness) drainOneState(s *session) {
	h.T.Helper()
	var last []byte
	for {
		select {
		case b := <-s.Out:
			last = b
			continue
		default:
		}
		break
	}
	if len(last) == 0 {
		return
	}
	var state protocol.StateMsg
	if err := json.Unmarshal(last, &state); err != nil {
		h.T.Fatalf("unmarshal STATE: %v", err)
	}
	s.lastState = state
}
