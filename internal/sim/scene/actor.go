package scene

import (
	"math"

	"actorstage.dev/internal/protocol"
)

// Actor is a stage entity. All fields are owned by the scene loop
// goroutine; nothing outside the loop (or the pre-Run setup phase) may
// touch them.
type Actor struct {
	ID   string
	Name string

	// ResumeToken is a transport-level token used for reconnects.
	// It is intentionally NOT included in tick logs.
	ResumeToken string

	Pos Vec3
	Vel Vec3

	// Look axes in radians. Yaw is the horizontal turn angle, Pitch the
	// vertical one.
	Yaw   float64
	Pitch float64

	// Raw input throttle: X=left/right, Y=jump, Z=forward/back.
	InputThrottle Vec3

	Grounded  bool
	Sprinting bool

	// PlayerControllable gates camera and controlling-player writes.
	PlayerControllable bool
	CameraActorID      string
	// ControllingPlayer is cleared on stage reset; scripts and clients
	// must reassert it afterwards.
	ControllingPlayer string

	Scripted bool
	SpawnPos Vec3

	Events []protocol.Event
}

// WorldThrottle rotates the raw input throttle into world space by the
// actor's yaw. Components are clamped to [-1,1].
func (a *Actor) WorldThrottle() Vec3 {
	in := a.InputThrottle.ClampUnit()
	sin, cos := math.Sin(a.Yaw), math.Cos(a.Yaw)
	return Vec3{
		X: in.X*cos + in.Z*sin,
		Y: in.Y,
		Z: -in.X*sin + in.Z*cos,
	}.ClampUnit()
}

// LookAxes returns the two meaningful look components (yaw, pitch).
func (a *Actor) LookAxes() [2]float64 {
	return [2]float64{a.Yaw, a.Pitch}
}

func (a *Actor) AddEvent(e protocol.Event) {
	a.Events = append(a.Events, e)
}

func (a *Actor) TakeEvents() []protocol.Event {
	ev := a.Events
	a.Events = nil
	return ev
}

// resetToSpawn restores an actor to its spawn state. Player bindings are
// dropped: controlling-player assignment does not survive a reset.
func (a *Actor) resetToSpawn() {
	a.Pos = a.SpawnPos
	a.Vel = Vec3{}
	a.Yaw = 0
	a.Pitch = 0
	a.InputThrottle = Vec3{}
	a.Grounded = false
	a.Sprinting = false
	a.CameraActorID = ""
	a.ControllingPlayer = ""
	a.Events = nil
}
