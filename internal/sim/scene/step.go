package scene

import (
	"encoding/json"
	"sort"
	"time"
)

// StepOnce advances exactly one tick with the given inputs and returns
// the new tick. Run owns stepping in production; this exists for tests
// that drive the scene synchronously.
func (s *Scene) StepOnce(joins []JoinRequest, leaves []string, cmds []CmdEnvelope) uint64 {
	s.step(joins, leaves, cmds)
	return s.tick.Load()
}

func (s *Scene) step(joins []JoinRequest, leaves []string, cmds []CmdEnvelope) {
	started := time.Now()
	nowTick := s.tick.Add(1)

	var recordedJoins []RecordedJoin
	for _, req := range joins {
		resp := s.handleJoin(req)
		recordedJoins = append(recordedJoins, RecordedJoin{ActorID: resp.Welcome.ActorID, Name: req.Name})
	}
	for _, id := range leaves {
		s.handleLeave(id)
	}

	var recordedCmds []RecordedCmd
	for _, env := range cmds {
		a := s.actors[env.ActorID]
		if a == nil {
			continue
		}
		s.applyCmd(a, env.Cmd, nowTick)
		recordedCmds = append(recordedCmds, RecordedCmd{ActorID: env.ActorID, Cmd: env.Cmd})
	}

	// Scripts observe last tick's state and write intent for this one.
	for _, hook := range s.tickHooks {
		hook(nowTick)
	}

	dt := 1.0 / float64(s.cfg.TickRateHz)
	for _, id := range s.sortedActorIDs() {
		s.integrate(s.actors[id], dt)
	}

	s.broadcastState(nowTick)

	if s.tickLogger != nil {
		_ = s.tickLogger.WriteTick(TickLogEntry{
			Tick:   nowTick,
			Joins:  recordedJoins,
			Leaves: leaves,
			Cmds:   recordedCmds,
			Actors: len(s.actors),
		})
	}

	if s.snapshotSink != nil && nowTick%uint64(s.cfg.SnapshotEveryTicks) == 0 {
		select {
		case s.snapshotSink <- s.exportSnapshot(nowTick):
		default:
			// Sink backlogged; skip rather than stall the loop.
		}
	}

	s.actorCount.Store(int64(len(s.actors)))
	s.clientCount.Store(int64(len(s.clients)))
	s.stepNanos.Store(time.Since(started).Nanoseconds())
}

// integrate advances one actor by dt seconds: throttle drives horizontal
// velocity, jump fires only while grounded, gravity pulls toward the
// ground plane.
func (s *Scene) integrate(a *Actor, dt float64) {
	wt := a.WorldThrottle()

	speed := s.cfg.MoveSpeed
	if a.Sprinting {
		speed *= s.cfg.SprintMultiplier
	}
	a.Vel.X = wt.X * speed
	a.Vel.Z = wt.Z * speed

	if a.Grounded && wt.Y > 0 {
		a.Vel.Y = s.cfg.JumpSpeed * wt.Y
		a.Grounded = false
	}
	a.Vel.Y -= s.cfg.Gravity * dt

	a.Pos = a.Pos.Add(a.Vel.Scale(dt))

	// Ground plane collision.
	if a.Pos.Y <= s.cfg.GroundY {
		a.Pos.Y = s.cfg.GroundY
		if a.Vel.Y < 0 {
			a.Vel.Y = 0
		}
		a.Grounded = true
	} else {
		a.Grounded = false
	}

	// Stage boundary.
	if a.Pos.X > s.cfg.BoundaryR {
		a.Pos.X = s.cfg.BoundaryR
	}
	if a.Pos.X < -s.cfg.BoundaryR {
		a.Pos.X = -s.cfg.BoundaryR
	}
	if a.Pos.Z > s.cfg.BoundaryR {
		a.Pos.Z = s.cfg.BoundaryR
	}
	if a.Pos.Z < -s.cfg.BoundaryR {
		a.Pos.Z = -s.cfg.BoundaryR
	}
}

func (s *Scene) broadcastState(nowTick uint64) {
	ids := s.sortedActorIDs()
	for _, id := range ids {
		cs := s.clients[id]
		if cs == nil || cs.Out == nil {
			continue
		}
		a := s.actors[id]
		msg := s.buildState(a, ids, nowTick)
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case cs.Out <- b:
		default:
			// Slow client; drop this frame rather than block the loop.
		}
	}
}

func (s *Scene) sortedActorIDs() []string {
	ids := make([]string, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
