package scene

import (
	"context"
	"errors"
)

type resetReq struct {
	Resp chan resetResp
}

type resetResp struct {
	Tick uint64
	Err  string
}

// RequestReset asks the loop to reset the stage after the current tick
// and waits for completion. Actors return to spawn; camera and
// controlling-player bindings are cleared and must be reasserted by
// scripts and clients afterwards.
func (s *Scene) RequestReset(ctx context.Context) (uint64, error) {
	req := resetReq{Resp: make(chan resetResp, 1)}
	select {
	case s.resetReq <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case resp := <-req.Resp:
		if resp.Err != "" {
			return resp.Tick, errors.New(resp.Err)
		}
		return resp.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// ResetNow performs a reset synchronously. Loop goroutine (or pre-Run,
// e.g. tests) only.
func (s *Scene) ResetNow() {
	for _, id := range s.sortedActorIDs() {
		s.actors[id].resetToSpawn()
	}
	s.cfg.Seed++
	s.resetTotal++
}

func (s *Scene) handleResetRequests(reqs []resetReq) {
	tick := s.tick.Load()

	// Emit a final pre-reset snapshot when a sink is attached.
	if s.snapshotSink != nil {
		select {
		case s.snapshotSink <- s.exportSnapshot(tick):
		default:
		}
	}

	s.ResetNow()

	for _, req := range reqs {
		if req.Resp == nil {
			continue
		}
		select {
		case req.Resp <- resetResp{Tick: tick}:
		default:
		}
	}
}
