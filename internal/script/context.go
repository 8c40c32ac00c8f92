// Package script exposes the actor scripting surface: a small façade
// over stage actors that user-authored Lua scripts (and Go callers)
// use to read and write actor properties.
package script

import (
	"actorstage.dev/internal/sim/scene"
)

// Context binds a stage handle and the current actor for script
// invocations. It is passed explicitly wherever it is needed; there is no
// process-wide instance. Every operation resolves an optional actor
// reference, defaulting to the current actor, then forwards to the
// resolved actor.
//
// Contexts must only be used from the scene loop goroutine (scripts run
// inside the tick hook) or before the loop starts.
type Context struct {
	stage   *scene.Scene
	actorID string
}

func NewContext(stage *scene.Scene, actorID string) *Context {
	return &Context{stage: stage, actorID: actorID}
}

// ActorID returns the current actor's ID.
func (c *Context) ActorID() string { return c.actorID }

func (c *Context) actor(ref []string) (*scene.Actor, error) {
	r := ""
	if len(ref) > 0 {
		r = ref[0]
	}
	return c.stage.ActorByRef(c.actorID, r)
}

// current resolves the actor executing this script, ignoring any ref.
func (c *Context) current() (*scene.Actor, error) {
	return c.stage.ActorByRef(c.actorID, "")
}

// IsGrounded reports whether the actor is standing on the ground.
func (c *Context) IsGrounded(ref ...string) (bool, error) {
	a, err := c.actor(ref)
	if err != nil {
		return false, err
	}
	return a.Grounded, nil
}

// IsSprinting reports whether the actor is sprinting.
func (c *Context) IsSprinting(ref ...string) (bool, error) {
	a, err := c.actor(ref)
	if err != nil {
		return false, err
	}
	return a.Sprinting, nil
}

// WorldThrottle returns the actor's world-space throttle. Each component
// is in [-1,1].
func (c *Context) WorldThrottle(ref ...string) (scene.Vec3, error) {
	a, err := c.actor(ref)
	if err != nil {
		return scene.Vec3{}, err
	}
	return a.WorldThrottle(), nil
}

// Throttle returns the actor's raw input throttle: X=left/right, Y=jump,
// Z=forward/back.
func (c *Context) Throttle(ref ...string) (scene.Vec3, error) {
	a, err := c.actor(ref)
	if err != nil {
		return scene.Vec3{}, err
	}
	return a.InputThrottle.ClampUnit(), nil
}

// RawThrottle is an alias for Throttle.
func (c *Context) RawThrottle(ref ...string) (scene.Vec3, error) {
	return c.Throttle(ref...)
}

// LookAxes returns the actor's horizontal and vertical turn angles in
// radians.
func (c *Context) LookAxes(ref ...string) ([2]float64, error) {
	a, err := c.actor(ref)
	if err != nil {
		return [2]float64{}, err
	}
	return a.LookAxes(), nil
}

// SetCameraActor points the current actor's camera at the referenced
// actor. An empty ref resets the camera. The write is a no-op when the
// current actor is not player-controllable.
func (c *Context) SetCameraActor(ref string) error {
	a, err := c.current()
	if err != nil {
		return err
	}
	if !a.PlayerControllable {
		return nil
	}
	if ref != "" {
		if _, err := c.stage.ActorByRef(c.actorID, ref); err != nil {
			return err
		}
	}
	a.CameraActorID = ref
	return nil
}

// CameraActor returns the actor's camera actor reference, or "" when the
// camera is unset.
func (c *Context) CameraActor(ref ...string) (string, error) {
	a, err := c.actor(ref)
	if err != nil {
		return "", err
	}
	return a.CameraActorID, nil
}

// ResetCameraActor is equivalent to SetCameraActor("").
func (c *Context) ResetCameraActor() error {
	return c.SetCameraActor("")
}

// IsPlayerControllable reports whether the actor accepts direct player
// control.
func (c *Context) IsPlayerControllable(ref ...string) (bool, error) {
	a, err := c.actor(ref)
	if err != nil {
		return false, err
	}
	return a.PlayerControllable, nil
}

// SetPlayerControllable mutates the current actor only.
func (c *Context) SetPlayerControllable(v bool) error {
	a, err := c.current()
	if err != nil {
		return err
	}
	a.PlayerControllable = v
	return nil
}

// SetControllingPlayer assigns the player controlling the current actor.
// An empty ID means "unassigned". The write is a no-op when the current
// actor is not player-controllable. The assignment does not survive a
// stage reset.
func (c *Context) SetControllingPlayer(playerID string) error {
	a, err := c.current()
	if err != nil {
		return err
	}
	if !a.PlayerControllable {
		return nil
	}
	a.ControllingPlayer = playerID
	return nil
}

// ControllingPlayer returns the controlling player's ID, or "" when
// unassigned.
func (c *Context) ControllingPlayer(ref ...string) (string, error) {
	a, err := c.actor(ref)
	if err != nil {
		return "", err
	}
	return a.ControllingPlayer, nil
}
