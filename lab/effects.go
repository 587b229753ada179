package lab

import (
	"github.com/chewxy/math32"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/chemlab/beaker"
	"github.com/pthm-cable/chemlab/components"
	"github.com/pthm-cable/chemlab/renderer"
	"github.com/pthm-cable/chemlab/telemetry"
)

const (
	// Dropper release point scatter around the beaker axis
	dropperJitter = 0.08

	// Universal indicator stock solution color
	dropletColorR = 0.50
	dropletColorG = 0.25
	dropletColorB = 0.65

	bubbleRadiusMin = 0.004
	bubbleRadiusMax = 0.010
	bubbleSpinMin   = 2.0
	bubbleSpinMax   = 4.5

	rippleStartRadius = 0.02
	rippleMaxFrac     = 0.6
)

// updateDroplets advances falling indicator drops and splashes the ones
// that reach the water surface.
func (l *Lab) updateDroplets(dt float32) {
	surfaceY := l.cfg.Derived.SurfaceY32
	gravity := float32(l.cfg.Effects.DropletGravity)

	type splash struct {
		entity ecs.Entity
		x, z   float32
	}
	var landed []splash

	query := l.dropletFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()

		vel.Y -= gravity * dt
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt

		if pos.Y <= surfaceY {
			landed = append(landed, splash{entity: query.Entity(), x: pos.X, z: pos.Z})
		}
	}

	for _, s := range landed {
		l.splashIndicator(s.x, s.z)
		l.dropletMapper.Remove(s.entity)
	}
}

// splashIndicator lands one indicator drop at the given surface point.
func (l *Lab) splashIndicator(x, z float32) {
	l.chem.AddIndicatorDrop()
	l.mgr.AddIndicatorAt(x, z)
	l.mgr.AddSource(x, z, l.cfg.Effects.DropletSplashCount)
	l.spawnRipple(x, z)
	l.collector.RecordIndicatorDrop()
	l.writeEvent(telemetry.EventDrop, x, z, 1)
}

// updateBubbles spawns bubbles over dissolving powder and floats the live
// ones up to the surface.
func (l *Lab) updateBubbles(dt float32) {
	cfg := l.cfg.Effects
	surfaceY := l.cfg.Derived.SurfaceY32

	// Emission is proportional to how many batches are actively dissolving.
	for _, b := range l.powder.Batches() {
		if !b.DissolveActive || !b.Visible || b.Count() == 0 {
			continue
		}
		l.bubbleAccum += float32(cfg.BubbleRate) * dt
		for l.bubbleAccum >= 1 {
			l.bubbleAccum--
			i := l.rng.Intn(b.Count())
			local := l.frame.WorldToLocal(beaker.Vec3{X: b.X[i], Y: b.Y[i], Z: b.Z[i]})
			l.spawnBubble(local.X, local.Y, local.Z)
		}
	}

	riseSpeed := float32(cfg.BubbleRiseSpeed)
	wobbleAmp := float32(cfg.BubbleWobble)

	type popped struct {
		entity ecs.Entity
		x, z   float32
	}
	var surfaced []popped

	query := l.bubbleFilter.Query()
	for query.Next() {
		pos, bub := query.Get()

		bub.Wobble += bub.WobbleSpeed * dt
		pos.X += math32.Cos(bub.Wobble) * wobbleAmp * dt
		pos.Y += riseSpeed * dt

		if pos.Y >= surfaceY {
			surfaced = append(surfaced, popped{entity: query.Entity(), x: pos.X, z: pos.Z})
		}
	}

	for _, p := range surfaced {
		l.spawnRipple(p.x, p.z)
		l.bubbleMapper.Remove(p.entity)
	}
}

func (l *Lab) spawnBubble(x, y, z float32) {
	pos := components.Position{X: x, Y: y, Z: z}
	bub := components.Bubble{
		Radius:      bubbleRadiusMin + l.rng.Float32()*(bubbleRadiusMax-bubbleRadiusMin),
		Wobble:      l.rng.Float32() * 2 * math32.Pi,
		WobbleSpeed: bubbleSpinMin + l.rng.Float32()*(bubbleSpinMax-bubbleSpinMin),
	}
	l.bubbleMapper.NewEntity(&pos, &bub)
}

// updateRipples expands surface rings and retires the faded ones.
func (l *Lab) updateRipples(dt float32) {
	expand := float32(l.cfg.Effects.RippleExpandSpeed)

	var expired []ecs.Entity

	query := l.rippleFilter.Query()
	for query.Next() {
		_, rip := query.Get()

		rip.Age += dt
		rip.Radius += expand * dt
		if rip.Radius > rip.MaxRadius {
			rip.Radius = rip.MaxRadius
		}
		if rip.Age >= rip.LifeSeconds {
			expired = append(expired, query.Entity())
		}
	}

	for _, e := range expired {
		l.rippleMapper.Remove(e)
	}
}

// spawnRipple starts an expanding ring at the given surface point.
func (l *Lab) spawnRipple(x, z float32) {
	pos := components.Position{X: x, Y: l.cfg.Derived.SurfaceY32, Z: z}
	rip := components.Ripple{
		Radius:      rippleStartRadius,
		MaxRadius:   l.cfg.Derived.Radius32 * rippleMaxFrac,
		LifeSeconds: float32(l.cfg.Effects.RippleLifeSec),
	}
	l.rippleMapper.NewEntity(&pos, &rip)
}

// clearEffects removes every transient effect entity.
func (l *Lab) clearEffects() {
	var remove []ecs.Entity

	dq := l.dropletFilter.Query()
	for dq.Next() {
		remove = append(remove, dq.Entity())
	}
	for _, e := range remove {
		l.dropletMapper.Remove(e)
	}

	remove = remove[:0]
	bq := l.bubbleFilter.Query()
	for bq.Next() {
		remove = append(remove, bq.Entity())
	}
	for _, e := range remove {
		l.bubbleMapper.Remove(e)
	}

	remove = remove[:0]
	rq := l.rippleFilter.Query()
	for rq.Next() {
		remove = append(remove, rq.Entity())
	}
	for _, e := range remove {
		l.rippleMapper.Remove(e)
	}
}

// collectEffectSprites snapshots effect entities into the reusable sprite
// buffers for this frame's draw.
func (l *Lab) collectEffectSprites() {
	l.droplets = l.droplets[:0]
	l.bubbles = l.bubbles[:0]
	l.ripples = l.ripples[:0]

	dq := l.dropletFilter.Query()
	for dq.Next() {
		pos, _, drop := dq.Get()
		l.droplets = append(l.droplets, renderer.DropletSprite{
			X: pos.X, Y: pos.Y, Z: pos.Z,
			Radius: drop.Radius,
			R:      drop.R, G: drop.G, B: drop.B,
		})
	}

	bq := l.bubbleFilter.Query()
	for bq.Next() {
		pos, bub := bq.Get()
		l.bubbles = append(l.bubbles, renderer.BubbleSprite{
			X: pos.X, Y: pos.Y, Z: pos.Z,
			Radius: bub.Radius,
		})
	}

	rq := l.rippleFilter.Query()
	for rq.Next() {
		pos, rip := rq.Get()
		alpha := float32(1)
		if rip.LifeSeconds > 0 {
			alpha = 1 - rip.Age/rip.LifeSeconds
		}
		if alpha <= 0 {
			continue
		}
		l.ripples = append(l.ripples, renderer.RippleSprite{
			X: pos.X, Z: pos.Z, Y: pos.Y,
			Radius: rip.Radius,
			Alpha:  alpha,
		})
	}
}
