// Package components defines ECS components for the lab simulation.
package components

// Position represents an entity's position in beaker-local space.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity in beaker-local space.
type Velocity struct {
	X, Y, Z float32
}

// Droplet is a falling indicator drop released from the dropper.
// It splashes into the solution when it crosses the water surface.
type Droplet struct {
	R, G, B float32
	Radius  float32
}

// Bubble is a small gas bubble released while powder dissolves.
// Wobble is the phase of its lateral sway, advanced by WobbleSpeed.
type Bubble struct {
	Radius      float32
	Wobble      float32
	WobbleSpeed float32
}

// Ripple is an expanding ring on the water surface.
// It fades out as Age approaches LifeSeconds.
type Ripple struct {
	Radius      float32
	MaxRadius   float32
	Age         float32
	LifeSeconds float32
}
