package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	StageID string `json:"stage_id"`
	Tick    uint64 `json:"tick"`
}

type StageSnapshotV1 struct {
	Header Header `json:"header"`

	Seed       int64 `json:"seed"`
	TickRateHz int   `json:"tick_rate_hz"`

	// Physics tuning (captured for deterministic resume).
	GroundY          float64 `json:"ground_y"`
	MoveSpeed        float64 `json:"move_speed"`
	SprintMultiplier float64 `json:"sprint_multiplier"`
	JumpSpeed        float64 `json:"jump_speed"`
	Gravity          float64 `json:"gravity"`
	BoundaryR        float64 `json:"boundary_r"`

	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`

	Actors []ActorV1 `json:"actors"`

	Counters CountersV1 `json:"counters"`
}

type ActorV1 struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Pos      [3]float64 `json:"pos"`
	Vel      [3]float64 `json:"vel"`
	SpawnPos [3]float64 `json:"spawn_pos"`

	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`

	Throttle [3]float64 `json:"throttle"`

	Grounded  bool `json:"grounded"`
	Sprinting bool `json:"sprinting"`

	PlayerControllable bool   `json:"player_controllable"`
	CameraActorID      string `json:"camera_actor_id,omitempty"`
	ControllingPlayer  string `json:"controlling_player,omitempty"`

	Scripted bool `json:"scripted,omitempty"`
}

type CountersV1 struct {
	NextActor uint64 `json:"next_actor"`
}

func WriteSnapshot(path string, snap StageSnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (StageSnapshotV1, error) {
	var snap StageSnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
