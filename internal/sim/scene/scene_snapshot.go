package scene

import (
	"fmt"

	"actorstage.dev/internal/persistence/snapshot"
)

// ExportSnapshot captures the full stage state at the given tick. Loop
// goroutine (or pre-Run, e.g. tests) only.
func (s *Scene) ExportSnapshot(tick uint64) snapshot.StageSnapshotV1 {
	return s.exportSnapshot(tick)
}

func (s *Scene) exportSnapshot(nowTick uint64) snapshot.StageSnapshotV1 {
	snap := snapshot.StageSnapshotV1{
		Header:             snapshot.Header{Version: 1, StageID: s.cfg.ID, Tick: nowTick},
		Seed:               s.cfg.Seed,
		TickRateHz:         s.cfg.TickRateHz,
		GroundY:            s.cfg.GroundY,
		MoveSpeed:          s.cfg.MoveSpeed,
		SprintMultiplier:   s.cfg.SprintMultiplier,
		JumpSpeed:          s.cfg.JumpSpeed,
		Gravity:            s.cfg.Gravity,
		BoundaryR:          s.cfg.BoundaryR,
		SnapshotEveryTicks: s.cfg.SnapshotEveryTicks,
		Counters:           snapshot.CountersV1{NextActor: s.nextActorNum.Load()},
	}
	for _, id := range s.sortedActorIDs() {
		a := s.actors[id]
		snap.Actors = append(snap.Actors, snapshot.ActorV1{
			ID:                 a.ID,
			Name:               a.Name,
			Pos:                a.Pos.Array(),
			Vel:                a.Vel.Array(),
			SpawnPos:           a.SpawnPos.Array(),
			Yaw:                a.Yaw,
			Pitch:              a.Pitch,
			Throttle:           a.InputThrottle.Array(),
			Grounded:           a.Grounded,
			Sprinting:          a.Sprinting,
			PlayerControllable: a.PlayerControllable,
			CameraActorID:      a.CameraActorID,
			ControllingPlayer:  a.ControllingPlayer,
			Scripted:           a.Scripted,
		})
	}
	return snap
}

// ImportSnapshot restores stage state. Pre-Run only.
func (s *Scene) ImportSnapshot(snap snapshot.StageSnapshotV1) error {
	if snap.Header.Version != 1 {
		return fmt.Errorf("unsupported snapshot version: %d", snap.Header.Version)
	}
	s.actors = map[string]*Actor{}
	for _, av := range snap.Actors {
		a := &Actor{
			ID:                 av.ID,
			Name:               av.Name,
			Pos:                Vec3{X: av.Pos[0], Y: av.Pos[1], Z: av.Pos[2]},
			Vel:                Vec3{X: av.Vel[0], Y: av.Vel[1], Z: av.Vel[2]},
			SpawnPos:           Vec3{X: av.SpawnPos[0], Y: av.SpawnPos[1], Z: av.SpawnPos[2]},
			Yaw:                av.Yaw,
			Pitch:              av.Pitch,
			InputThrottle:      Vec3{X: av.Throttle[0], Y: av.Throttle[1], Z: av.Throttle[2]},
			Grounded:           av.Grounded,
			Sprinting:          av.Sprinting,
			PlayerControllable: av.PlayerControllable,
			CameraActorID:      av.CameraActorID,
			ControllingPlayer:  av.ControllingPlayer,
			Scripted:           av.Scripted,
		}
		s.actors[a.ID] = a
	}
	s.nextActorNum.Store(snap.Counters.NextActor)
	s.tick.Store(snap.Header.Tick)
	return nil
}
