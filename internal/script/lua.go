package script

import (
	"github.com/Shopify/go-lua"

	"actorstage.dev/internal/sim/scene"
)

// Register installs the `actor` table into a Lua state, binding every
// façade operation to ctx. Script-facing names keep the scripting API's
// camelCase convention.
func Register(l *lua.State, ctx *Context) {
	fns := []lua.RegistryFunction{
		{Name: "isGrounded", Function: func(l *lua.State) int {
			v, err := ctx.IsGrounded(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushBoolean(v)
			return 1
		}},
		{Name: "isSprinting", Function: func(l *lua.State) int {
			v, err := ctx.IsSprinting(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushBoolean(v)
			return 1
		}},
		{Name: "getWorldThrottle", Function: func(l *lua.State) int {
			v, err := ctx.WorldThrottle(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushVec3(l, v)
			return 1
		}},
		{Name: "getThrottle", Function: func(l *lua.State) int {
			v, err := ctx.Throttle(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushVec3(l, v)
			return 1
		}},
		{Name: "getRawThrottle", Function: func(l *lua.State) int {
			v, err := ctx.RawThrottle(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushVec3(l, v)
			return 1
		}},
		{Name: "getLookAxes", Function: func(l *lua.State) int {
			v, err := ctx.LookAxes(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			pushAxes(l, v)
			return 1
		}},
		{Name: "setCameraActor", Function: func(l *lua.State) int {
			ref := ""
			if !l.IsNoneOrNil(1) {
				ref = lua.CheckString(l, 1)
			}
			if err := ctx.SetCameraActor(ref); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			return 0
		}},
		{Name: "getCameraActor", Function: func(l *lua.State) int {
			v, err := ctx.CameraActor(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			if v == "" {
				l.PushNil()
			} else {
				l.PushString(v)
			}
			return 1
		}},
		{Name: "resetCameraActor", Function: func(l *lua.State) int {
			if err := ctx.ResetCameraActor(); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			return 0
		}},
		{Name: "isPlayerControllable", Function: func(l *lua.State) int {
			v, err := ctx.IsPlayerControllable(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushBoolean(v)
			return 1
		}},
		{Name: "setIsPlayerControllable", Function: func(l *lua.State) int {
			if l.TypeOf(1) != lua.TypeBoolean {
				lua.ArgumentError(l, 1, "value must be a boolean")
			}
			if err := ctx.SetPlayerControllable(l.ToBoolean(1)); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			return 0
		}},
		{Name: "setControllingPlayer", Function: func(l *lua.State) int {
			// nil/omitted normalizes to "" (unassigned); anything else
			// must be a real string, not a coercible number.
			id := ""
			switch l.TypeOf(1) {
			case lua.TypeNone, lua.TypeNil:
			case lua.TypeString:
				id, _ = l.ToString(1)
			default:
				lua.ArgumentError(l, 1, "player id must be a string")
			}
			if err := ctx.SetControllingPlayer(id); err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			return 0
		}},
		{Name: "getControllingPlayer", Function: func(l *lua.State) int {
			v, err := ctx.ControllingPlayer(optRef(l, 1)...)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushString(v)
			return 1
		}},
	}

	l.NewTable()
	lua.SetFunctions(l, fns, 0)
	l.SetGlobal("actor")
}

// optRef reads the optional actor reference argument. None/nil means the
// current actor.
func optRef(l *lua.State, index int) []string {
	if l.IsNoneOrNil(index) {
		return nil
	}
	return []string{lua.CheckString(l, index)}
}

func pushVec3(l *lua.State, v scene.Vec3) {
	l.NewTable()
	l.PushNumber(v.X)
	l.SetField(-2, "x")
	l.PushNumber(v.Y)
	l.SetField(-2, "y")
	l.PushNumber(v.Z)
	l.SetField(-2, "z")
}

func pushAxes(l *lua.State, ax [2]float64) {
	l.NewTable()
	l.PushNumber(ax[0])
	l.SetField(-2, "x")
	l.PushNumber(ax[1])
	l.SetField(-2, "y")
}
