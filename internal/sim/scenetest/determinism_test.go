package scenetest

import (
	"math"
	"testing"

	"actorstage.dev/internal/protocol"
	"actorstage.dev/internal/sim/scene"
)

func driveRun(t *testing.T) protocol.StateMsg {
	t.Helper()
	h := NewHarness(t, scene.StageConfig{ID: "stage_det", TickRateHz: 20, Seed: 7}, "alice")

	look := [2]float64{math.Pi / 3, 0.1}
	forward := [3]float64{0, 0, 1}
	on := true
	h.Step([]protocol.IntentReq{
		{ID: "i1", Type: "LOOK", LookAxes: &look},
		{ID: "i2", Type: "MOVE", Throttle: &forward},
		{ID: "i3", Type: "SPRINT", Sprint: &on},
	}, nil)
	h.StepN(50)
	h.Step([]protocol.IntentReq{{ID: "i4", Type: "JUMP"}}, nil)
	return h.StepN(30)
}

func TestSameInputsSameTrajectory(t *testing.T) {
	a := driveRun(t)
	b := driveRun(t)

	if a.Tick != b.Tick {
		t.Fatalf("tick divergence: %d vs %d", a.Tick, b.Tick)
	}
	if a.Self.Pos != b.Self.Pos || a.Self.Vel != b.Self.Vel {
		t.Fatalf("trajectory divergence:\n a=%+v\n b=%+v", a.Self, b.Self)
	}
	if a.Self.LookAxes != b.Self.LookAxes || a.Self.WorldThrottle != b.Self.WorldThrottle {
		t.Fatalf("orientation divergence:\n a=%+v\n b=%+v", a.Self, b.Self)
	}
}

func TestStatePresentsBothThrottleFrames(t *testing.T) {
	h := NewHarness(t, scene.StageConfig{ID: "stage_th", TickRateHz: 20}, "alice")

	look := [2]float64{math.Pi / 2, 0}
	right := [3]float64{0, 0, 1}
	st := h.Step([]protocol.IntentReq{
		{ID: "i1", Type: "LOOK", LookAxes: &look},
		{ID: "i2", Type: "MOVE", Throttle: &right},
	}, nil)

	// Raw throttle stays in the input frame; the world frame follows yaw.
	if st.Self.Throttle != right {
		t.Fatalf("raw throttle changed: %+v", st.Self.Throttle)
	}
	if math.Abs(st.Self.WorldThrottle[0]-1) > 1e-9 || math.Abs(st.Self.WorldThrottle[2]) > 1e-9 {
		t.Fatalf("world throttle not rotated by yaw: %+v", st.Self.WorldThrottle)
	}
}
