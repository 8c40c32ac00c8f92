package scene

import "actorstage.dev/internal/protocol"

const (
	IntentTypeMove   = "MOVE"
	IntentTypeLook   = "LOOK"
	IntentTypeSprint = "SPRINT"
	IntentTypeJump   = "JUMP"

	ControlTypeSetCamera            = "SET_CAMERA"
	ControlTypeResetCamera          = "RESET_CAMERA"
	ControlTypeSetControllable      = "SET_CONTROLLABLE"
	ControlTypeSetControllingPlayer = "SET_CONTROLLING_PLAYER"
)

func (s *Scene) applyCmd(a *Actor, cmd protocol.CmdMsg, nowTick uint64) {
	// Staleness check: accept only [now-2, now].
	if cmd.Tick+2 < nowTick || cmd.Tick > nowTick {
		a.AddEvent(actionResult(nowTick, "CMD", false, protocol.ErrStale, "cmd tick out of range"))
		return
	}

	for _, in := range cmd.Intents {
		s.applyIntent(a, in, nowTick)
	}
	for _, ctl := range cmd.Controls {
		s.applyControl(a, ctl, nowTick)
	}
}

func (s *Scene) applyIntent(a *Actor, in protocol.IntentReq, nowTick uint64) {
	switch in.Type {
	case IntentTypeMove:
		if in.Throttle == nil {
			a.AddEvent(actionResult(nowTick, in.ID, false, protocol.ErrBadRequest, "missing throttle"))
			return
		}
		a.InputThrottle = Vec3{X: in.Throttle[0], Y: in.Throttle[1], Z: in.Throttle[2]}.ClampUnit()
	case IntentTypeLook:
		if in.LookAxes == nil {
			a.AddEvent(actionResult(nowTick, in.ID, false, protocol.ErrBadRequest, "missing look_axes"))
			return
		}
		a.Yaw = in.LookAxes[0]
		a.Pitch = in.LookAxes[1]
	case IntentTypeSprint:
		if in.Sprint == nil {
			a.AddEvent(actionResult(nowTick, in.ID, false, protocol.ErrBadRequest, "missing sprint"))
			return
		}
		a.Sprinting = *in.Sprint
	case IntentTypeJump:
		a.InputThrottle.Y = 1
	default:
		a.AddEvent(actionResult(nowTick, in.ID, false, protocol.ErrBadRequest, "unknown intent type"))
	}
}

func (s *Scene) applyControl(a *Actor, ctl protocol.ControlReq, nowTick uint64) {
	switch ctl.Type {
	case ControlTypeSetCamera:
		if !a.PlayerControllable {
			a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrNotControllable, "actor is not player-controllable"))
			return
		}
		if ctl.Target != "" && s.actors[ctl.Target] == nil {
			a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrInvalidTarget, "camera actor not found"))
			return
		}
		a.CameraActorID = ctl.Target
		s.audit(nowTick, a.ID, ctl.Type, ctl.Target, "")
		a.AddEvent(actionResult(nowTick, ctl.ID, true, "", ""))
	case ControlTypeResetCamera:
		if !a.PlayerControllable {
			a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrNotControllable, "actor is not player-controllable"))
			return
		}
		a.CameraActorID = ""
		s.audit(nowTick, a.ID, ctl.Type, "", "")
		a.AddEvent(actionResult(nowTick, ctl.ID, true, "", ""))
	case ControlTypeSetControllable:
		if ctl.Value == nil {
			a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrBadRequest, "missing value"))
			return
		}
		a.PlayerControllable = *ctl.Value
		s.audit(nowTick, a.ID, ctl.Type, "", "")
		a.AddEvent(actionResult(nowTick, ctl.ID, true, "", ""))
	case ControlTypeSetControllingPlayer:
		if !a.PlayerControllable {
			a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrNotControllable, "actor is not player-controllable"))
			return
		}
		player := ""
		if ctl.PlayerID != nil {
			player = *ctl.PlayerID
		}
		a.ControllingPlayer = player
		s.audit(nowTick, a.ID, ctl.Type, "", player)
		a.AddEvent(actionResult(nowTick, ctl.ID, true, "", ""))
	default:
		a.AddEvent(actionResult(nowTick, ctl.ID, false, protocol.ErrBadRequest, "unknown control type"))
	}
}

func (s *Scene) audit(tick uint64, actorID, action, target, player string) {
	if s.auditLogger == nil {
		return
	}
	_ = s.auditLogger.WriteAudit(AuditEntry{
		Tick:   tick,
		Actor:  actorID,
		Action: action,
		Target: target,
		Player: player,
	})
}

func actionResult(tick uint64, ref string, ok bool, code string, message string) protocol.Event {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
		if message == "" {
			message = "unknown error code"
		}
	}
	e := protocol.Event{
		"t":    tick,
		"type": "ACTION_RESULT",
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	return e
}
