package scene

import "actorstage.dev/internal/protocol"

func (s *Scene) buildState(a *Actor, ids []string, nowTick uint64) protocol.StateMsg {
	msg := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		ActorID:         a.ID,
		Self: protocol.SelfState{
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
		},
		Events: a.TakeEvents(),
	}
	for _, id := range ids {
		if id == a.ID {
			continue
		}
		o := s.actors[id]
		if o == nil {
			continue
		}
		msg.Actors = append(msg.Actors, protocol.ActorState{
			ID:       o.ID,
			Name:     o.Name,
			Pos:      o.Pos.Array(),
			Grounded: o.Grounded,
			Scripted: o.Scripted,
		})
	}
	return msg
}
