package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "100.snap.zst")

	in := StageSnapshotV1{
		Header:     Header{Version: 1, StageID: "stage_1", Tick: 100},
		Seed:       1337,
		TickRateHz: 20,
		GroundY:    0,
		MoveSpeed:  4.5,
		Gravity:    24.0,
		Actors: []ActorV1{
			{
				ID:                 "A1",
				Name:               "alice",
				Pos:                [3]float64{2, 0, -2},
				Yaw:                1.25,
				Grounded:           true,
				PlayerControllable: true,
				ControllingPlayer:  "P1",
			},
			{
				ID:       "A2",
				Name:     "patrol",
				Scripted: true,
			},
		},
		Counters: CountersV1{NextActor: 2},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if out.Header.Tick != 100 || out.Header.StageID != "stage_1" {
		t.Fatalf("header mismatch: %+v", out.Header)
	}
	if len(out.Actors) != 2 {
		t.Fatalf("expected 2 actors, got %d", len(out.Actors))
	}
	if out.Actors[0].ControllingPlayer != "P1" {
		t.Fatalf("controlling player lost: %+v", out.Actors[0])
	}
	if out.Actors[0].Yaw != 1.25 {
		t.Fatalf("yaw mismatch: %v", out.Actors[0].Yaw)
	}
	if !out.Actors[1].Scripted {
		t.Fatalf("scripted flag lost")
	}
	if out.Counters.NextActor != 2 {
		t.Fatalf("counters mismatch: %+v", out.Counters)
	}
}

func TestReadSnapshot_MissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}
