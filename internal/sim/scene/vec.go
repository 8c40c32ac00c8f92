package scene

import "math"

// Vec3 is a world-space vector. Throttle vectors reuse it with the
// convention X=left/right, Y=jump, Z=forward/back.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// ClampUnit clamps every component to [-1,1].
func (v Vec3) ClampUnit() Vec3 {
	return Vec3{X: clamp1(v.X), Y: clamp1(v.Y), Z: clamp1(v.Z)}
}

func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func clamp1(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
