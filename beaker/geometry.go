package beaker

import "github.com/chewxy/math32"

// Vec3 is a point or direction in beaker space. Particle state lives in
// flat arrays; Vec3 only crosses API boundaries.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Frame places a beaker in world space: a translation of the beaker center
// plus a yaw rotation about the world Y axis. The bench scene moves beakers
// around; everything inside one simulates in local coordinates, so external
// positions (powder grains, pour targets) cross through WorldToLocal first.
type Frame struct {
	Center Vec3
	Yaw    float32 // radians about +Y
}

// LocalToWorld converts a beaker-local point to world space.
func (f Frame) LocalToWorld(p Vec3) Vec3 {
	c := math32.Cos(f.Yaw)
	s := math32.Sin(f.Yaw)
	return Vec3{
		X: p.X*c + p.Z*s + f.Center.X,
		Y: p.Y + f.Center.Y,
		Z: -p.X*s + p.Z*c + f.Center.Z,
	}
}

// WorldToLocal converts a world-space point to beaker-local space.
func (f Frame) WorldToLocal(q Vec3) Vec3 {
	dx := q.X - f.Center.X
	dz := q.Z - f.Center.Z
	c := math32.Cos(f.Yaw)
	s := math32.Sin(f.Yaw)
	return Vec3{
		X: dx*c - dz*s,
		Y: q.Y - f.Center.Y,
		Z: dx*s + dz*c,
	}
}

// clamp01 clamps x to [0, 1].
func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smoothstep is the cubic ease 3t^2 - 2t^3 with t clamped to [0, 1].
func smoothstep(t float32) float32 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}
