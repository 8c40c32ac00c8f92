package cast

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.yaml")
	data := []byte(`actors:
  - name: director
    script: director.lua
    pos: [0, 0, 4]
    controllable: true
  - name: stunt_double
    pos: [2, 0, -2]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write cast: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Actors) != 2 {
		t.Fatalf("actors: got %d want 2", len(c.Actors))
	}
	if c.Actors[0].Script != "director.lua" || !c.Actors[0].Controllable {
		t.Fatalf("first actor: got %+v", c.Actors[0])
	}
	if c.Actors[1].Script != "" {
		t.Fatalf("unscripted actor has script %q", c.Actors[1].Script)
	}
	if c.Actors[1].Pos != [3]float64{2, 0, -2} {
		t.Fatalf("pos: got %v", c.Actors[1].Pos)
	}
}

func TestLoad_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cast.yaml")
	data := []byte(`actors:
  - script: ghost.lua
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write cast: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing name")
	}
}
