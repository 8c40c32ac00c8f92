package script

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"actorstage.dev/internal/sim/scene"
)

func newStage(t *testing.T) (*scene.Scene, *scene.Actor, *scene.Actor) {
	t.Helper()
	s, err := scene.New(scene.StageConfig{ID: "stage_test", Seed: 7})
	require.NoError(t, err)
	a1 := s.SpawnActor("alice", scene.Vec3{}, true, false)
	a2 := s.SpawnActor("patrol", scene.Vec3{X: 4}, false, true)
	return s, a1, a2
}

func TestThrottleAliasEquivalence(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	a1.InputThrottle = scene.Vec3{X: 0.5, Y: 0, Z: 1}

	got, err := ctx.Throttle()
	require.NoError(t, err)
	raw, err := ctx.RawThrottle()
	require.NoError(t, err)
	require.Equal(t, got, raw)
}

func TestThrottleBounds(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	a1.InputThrottle = scene.Vec3{X: 2, Y: -3, Z: 1.5}
	a1.Yaw = 0.7

	for _, fn := range []func(ref ...string) (scene.Vec3, error){ctx.Throttle, ctx.WorldThrottle} {
		v, err := fn()
		require.NoError(t, err)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			require.GreaterOrEqual(t, c, -1.0)
			require.LessOrEqual(t, c, 1.0)
		}
	}
}

func TestWorldThrottleRotatesByYaw(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	a1.InputThrottle = scene.Vec3{Z: 1}
	a1.Yaw = math.Pi / 2

	v, err := ctx.WorldThrottle()
	require.NoError(t, err)
	require.InDelta(t, 1, v.X, 1e-9)
	require.InDelta(t, 0, v.Y, 1e-9)
	require.InDelta(t, 0, v.Z, 1e-9)
}

func TestLookAxes(t *testing.T) {
	s, a1, a2 := newStage(t)
	ctx := NewContext(s, a1.ID)

	a2.Yaw = 1.25
	a2.Pitch = -0.5

	ax, err := ctx.LookAxes(a2.ID)
	require.NoError(t, err)
	require.Equal(t, [2]float64{1.25, -0.5}, ax)
}

func TestCameraActorRoundTrip(t *testing.T) {
	s, a1, a2 := newStage(t)
	ctx := NewContext(s, a1.ID)

	require.NoError(t, ctx.SetCameraActor(a2.ID))
	got, err := ctx.CameraActor()
	require.NoError(t, err)
	require.Equal(t, a2.ID, got)

	require.NoError(t, ctx.ResetCameraActor())
	got, err = ctx.CameraActor()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestSetCameraActor_UnknownTarget(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	require.Error(t, ctx.SetCameraActor("A99"))
}

func TestCameraWriteNoopWhenNotControllable(t *testing.T) {
	s, _, a2 := newStage(t)
	ctx := NewContext(s, a2.ID)

	require.NoError(t, ctx.SetCameraActor(a2.ID))
	got, err := ctx.CameraActor()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestControllingPlayer(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	require.NoError(t, ctx.SetControllingPlayer("P1"))
	got, err := ctx.ControllingPlayer()
	require.NoError(t, err)
	require.Equal(t, "P1", got)

	// Empty means "unassigned".
	require.NoError(t, ctx.SetControllingPlayer(""))
	got, err = ctx.ControllingPlayer()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestControllingPlayerNoopWhenNotControllable(t *testing.T) {
	s, _, a2 := newStage(t)
	ctx := NewContext(s, a2.ID)

	require.NoError(t, ctx.SetControllingPlayer("P1"))
	got, err := ctx.ControllingPlayer()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestControllingPlayerClearedOnReset(t *testing.T) {
	s, a1, _ := newStage(t)
	ctx := NewContext(s, a1.ID)

	require.NoError(t, ctx.SetControllingPlayer("P1"))
	s.ResetNow()

	got, err := ctx.ControllingPlayer()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestDefaultRefIsCurrentActor(t *testing.T) {
	s, a1, a2 := newStage(t)
	ctx := NewContext(s, a1.ID)

	a1.Grounded = true
	a2.Grounded = false

	self, err := ctx.IsGrounded()
	require.NoError(t, err)
	require.True(t, self)

	other, err := ctx.IsGrounded(a2.ID)
	require.NoError(t, err)
	require.False(t, other)

	_, err = ctx.IsGrounded("A99")
	require.Error(t, err)
}

func TestSetPlayerControllableMutatesCurrentOnly(t *testing.T) {
	s, a1, a2 := newStage(t)
	ctx := NewContext(s, a1.ID)

	require.NoError(t, ctx.SetPlayerControllable(false))
	require.False(t, a1.PlayerControllable)
	require.False(t, a2.PlayerControllable)

	require.NoError(t, ctx.SetPlayerControllable(true))
	require.True(t, a1.PlayerControllable)
}
