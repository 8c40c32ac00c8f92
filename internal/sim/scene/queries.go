package scene

import (
	"context"
	"errors"

	"actorstage.dev/internal/protocol"
)

type actorStateReq struct {
	ActorID string
	Resp    chan actorStateResp
}

type actorStateResp struct {
	State protocol.SelfState
	Err   string
}

// RequestActorState returns one actor's current state from the scene loop
// goroutine. Used by the admin endpoints.
func (s *Scene) RequestActorState(ctx context.Context, actorID string) (protocol.SelfState, error) {
	req := actorStateReq{
		ActorID: actorID,
		Resp:    make(chan actorStateResp, 1),
	}
	select {
	case s.stateReq <- req:
	case <-ctx.Done():
		return protocol.SelfState{}, ctx.Err()
	}
	select {
	case resp := <-req.Resp:
		if resp.Err != "" {
			return protocol.SelfState{}, errors.New(resp.Err)
		}
		return resp.State, nil
	case <-ctx.Done():
		return protocol.SelfState{}, ctx.Err()
	}
}

func (s *Scene) handleActorStateReq(req actorStateReq) {
	resp := actorStateResp{}
	defer func() {
		if req.Resp == nil {
			return
		}
		select {
		case req.Resp <- resp:
		default:
		}
	}()
	a := s.actors[req.ActorID]
	if a == nil {
		resp.Err = "actor not found"
		return
	}
	resp.State = protocol.SelfState{
		Pos:                a.Pos.Array(),
		Vel:                a.Vel.Array(),
		Grounded:           a.Grounded,
		Sprinting:          a.Sprinting,
		Throttle:           a.InputThrottle.ClampUnit().Array(),
		WorldThrottle:      a.WorldThrottle().Array(),
		LookAxes:           a.LookAxes(),
		CameraActor:        a.CameraActorID,
		PlayerControllable: a.PlayerControllable,
		ControllingPlayer:  a.ControllingPlayer,
	}
}

type snapReq struct {
	Resp chan snapResp
}

type snapResp struct {
	Tick uint64
	Err  string
}

// RequestSnapshot asks the loop to emit a snapshot to the sink.
func (s *Scene) RequestSnapshot(ctx context.Context) (uint64, error) {
	req := snapReq{Resp: make(chan snapResp, 1)}
	select {
	case s.snapReq <- req:
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

func (s *Scene) handleSnapReq(req snapReq) {
	resp := snapResp{Tick: s.tick.Load()}
	defer func() {
		if req.Resp == nil {
			return
		}
		select {
		case req.Resp <- resp:
		default:
		}
	}()
	if s.snapshotSink == nil {
		resp.Err = "no snapshot sink configured"
		return
	}
	select {
	case s.snapshotSink <- s.exportSnapshot(resp.Tick):
	default:
		resp.Err = "snapshot sink saturated"
	}
}
