package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte(`protocol_version: "1.0"
tick_rate_hz: 30
ground_y: 0.0
move_speed: 5.0
sprint_multiplier: 2.0
jump_speed: 8.0
gravity: 30.0
boundary_r: 256
snapshot_every_ticks: 1200
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.TickRateHz != 30 {
		t.Fatalf("tick_rate_hz: got %d want 30", tune.TickRateHz)
	}
	if tune.SprintMultiplier != 2.0 {
		t.Fatalf("sprint_multiplier: got %v want 2.0", tune.SprintMultiplier)
	}
	if tune.SnapshotEveryTicks != 1200 {
		t.Fatalf("snapshot_every_ticks: got %d want 1200", tune.SnapshotEveryTicks)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
