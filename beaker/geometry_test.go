package beaker

import (
	"testing"

	"github.com/chewxy/math32"
)

func almostEqual(a, b, eps float32) bool {
	d := a - b
	return d < eps && d > -eps
}

func TestFrameRoundTrip(t *testing.T) {
	frames := []Frame{
		{},
		{Center: Vec3{X: 2, Y: 1, Z: -3}},
		{Center: Vec3{X: -1, Y: 0.5, Z: 4}, Yaw: 0.7},
		{Yaw: math32.Pi / 2},
		{Center: Vec3{X: 10, Y: -2, Z: 10}, Yaw: -2.1},
	}
	points := []Vec3{
		{},
		{X: 1},
		{Z: -0.5},
		{X: 0.3, Y: 1.2, Z: -0.8},
	}

	for fi, f := range frames {
		for pi, p := range points {
			q := f.LocalToWorld(p)
			back := f.WorldToLocal(q)
			if !almostEqual(back.X, p.X, 1e-5) ||
				!almostEqual(back.Y, p.Y, 1e-5) ||
				!almostEqual(back.Z, p.Z, 1e-5) {
				t.Errorf("frame %d point %d: round trip %v -> %v -> %v", fi, pi, p, q, back)
			}
		}
	}
}

func TestFrameOriginMapsToCenter(t *testing.T) {
	f := Frame{Center: Vec3{X: 3, Y: 1.5, Z: -2}, Yaw: 1.1}
	got := f.LocalToWorld(Vec3{})
	if got != f.Center {
		t.Errorf("expected local origin at frame center, got %v", got)
	}
}

func TestFrameYawPreservesRadius(t *testing.T) {
	f := Frame{Yaw: 0.9}
	p := Vec3{X: 0.6, Z: -0.3}
	q := f.LocalToWorld(p)

	pr := math32.Hypot(p.X, p.Z)
	qr := math32.Hypot(q.X, q.Z)
	if !almostEqual(pr, qr, 1e-5) {
		t.Errorf("yaw changed radius: %f -> %f", pr, qr)
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -1, Y: 0.5, Z: 2}

	if got := a.Add(b); got != (Vec3{X: 0, Y: 2.5, Z: 5}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Sub(b); got != (Vec3{X: 2, Y: 1.5, Z: 1}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale: got %v", got)
	}
	if got := (Vec3{X: 3, Y: 4}).Length(); got != 5 {
		t.Errorf("Length: got %f", got)
	}
}

func TestSmoothstep(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, c := range cases {
		if got := smoothstep(c.in); !almostEqual(got, c.want, 1e-6) {
			t.Errorf("smoothstep(%f) = %f, want %f", c.in, got, c.want)
		}
	}
	// Monotonic on [0,1].
	prev := float32(0)
	for i := 1; i <= 20; i++ {
		v := smoothstep(float32(i) / 20)
		if v < prev {
			t.Fatalf("smoothstep not monotonic at %d/20", i)
		}
		prev = v
	}
}
