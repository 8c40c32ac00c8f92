package scene

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestScene(t)
	a := s.SpawnActor("alice", Vec3{X: 3}, true, false)
	b := s.SpawnActor("patrol", Vec3{Z: -4}, false, true)

	a.Pos = Vec3{X: 10, Y: 2, Z: 1}
	a.Yaw = 0.7
	a.Sprinting = true
	a.ControllingPlayer = "P1"
	a.CameraActorID = b.ID
	b.Grounded = true

	s.tick.Store(42)
	snap := s.exportSnapshot(42)

	s2, err := New(StageConfig{ID: "stage_test"})
	if err != nil {
		t.Fatalf("new scene: %v", err)
	}
	if err := s2.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	if s2.CurrentTick() != 42 {
		t.Fatalf("tick not restored: %d", s2.CurrentTick())
	}
	got := s2.actors[a.ID]
	if got == nil {
		t.Fatalf("actor %s missing after import", a.ID)
	}
	if got.Pos != a.Pos || got.Yaw != a.Yaw || !got.Sprinting {
		t.Fatalf("actor state not restored: %+v", got)
	}
	if got.ControllingPlayer != "P1" || got.CameraActorID != b.ID {
		t.Fatalf("bindings not restored: %+v", got)
	}
	if s2.actors[b.ID] == nil || !s2.actors[b.ID].Scripted {
		t.Fatalf("scripted actor not restored")
	}

	// New spawns must not collide with imported actor IDs.
	c := s2.SpawnActor("new", Vec3{}, true, false)
	if _, dup := map[string]bool{a.ID: true, b.ID: true}[c.ID]; dup {
		t.Fatalf("spawn after import reused id %s", c.ID)
	}
}

func TestImportSnapshotRejectsUnknownVersion(t *testing.T) {
	s := newTestScene(t)
	snap := s.exportSnapshot(1)
	snap.Header.Version = 99

	s2, err := New(StageConfig{})
	if err != nil {
		t.Fatalf("new scene: %v", err)
	}
	if err := s2.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestJoinLeaveKeepsActorClearsInput(t *testing.T) {
	s := newTestScene(t)

	out := make(chan []byte, 1)
	resp := s.joinActor("alice", out)
	id := resp.Welcome.ActorID
	if id == "" || resp.Welcome.ResumeToken == "" {
		t.Fatalf("bad welcome: %+v", resp.Welcome)
	}

	a := s.actors[id]
	a.InputThrottle = Vec3{Z: 1}
	a.Sprinting = true

	s.handleLeave(id)
	if s.actors[id] == nil {
		t.Fatalf("player actor must survive disconnect")
	}
	if s.clients[id] != nil {
		t.Fatalf("client channel must drop on leave")
	}
	if a.InputThrottle != (Vec3{}) || a.Sprinting {
		t.Fatalf("input must clear on leave: %+v", a)
	}
}
