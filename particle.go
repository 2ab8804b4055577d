package glimmer

import (
	"math"
	"math/rand/v2"
)

// particle holds per-particle simulation state. Unexported; managed by
// emitterPool. Particles are never persisted.
type particle struct {
	x, y    float64
	vx, vy  float64
	life    float64 // remaining lifetime in seconds
	maxLife float64 // initial lifetime (for computing t)
}

const defaultMaxParticles = 128

// emitterPool is the in-memory particle pool for one entity's emitter.
// The pool is preallocated to the configured maximum and never grows.
type emitterPool struct {
	particles []particle
	alive     int
}

func newEmitterPool(spec *EmitterSpec) *emitterPool {
	max := spec.MaxParticles
	if max <= 0 {
		max = defaultMaxParticles
	}
	return &emitterPool{particles: make([]particle, max)}
}

// AliveCount returns the number of alive particles.
func (p *emitterPool) AliveCount() int { return p.alive }

// update ages and moves alive particles, then emits new ones if the spec is
// emitting. Dead particles (life <= 0) are swap-removed.
//
// The emission count is floor(rate*dt) plus a Bernoulli draw on the
// fractional remainder, an unbiased stochastic rounding: over many frames the
// expected spawn count converges to rate*dt with no accumulator state.
func (p *emitterPool) update(spec *EmitterSpec, origin Vec2, dt float64) {
	i := 0
	for i < p.alive {
		pt := &p.particles[i]
		pt.life -= dt
		if pt.life <= 0 {
			p.alive--
			p.particles[i] = p.particles[p.alive]
			continue
		}
		pt.x += pt.vx * dt
		pt.y += pt.vy * dt
		i++
	}

	if !spec.Emitting || spec.Rate <= 0 {
		return
	}
	want := spec.Rate * dt
	count := int(want)
	if rand.Float64() < want-float64(count) {
		count++
	}
	for n := 0; n < count && p.alive < len(p.particles); n++ {
		p.spawn(spec, origin)
	}
}

// spawn initializes the particle at slot p.alive and increments alive.
// Direction, speed, and lifetime are each sampled uniformly from
// center ± spread/2.
func (p *emitterPool) spawn(spec *EmitterSpec, origin Vec2) {
	pt := &p.particles[p.alive]

	dir := Deg2Rad(centered(spec.Angle, spec.Spread).Random())
	speed := centered(spec.Speed, spec.SpeedRange).Random()
	pt.vx = math.Cos(dir) * speed
	pt.vy = math.Sin(dir) * speed

	pt.x = origin.X
	pt.y = origin.Y

	pt.life = centered(spec.Lifetime, spec.LifetimeRange).Random()
	if pt.life <= 0 {
		pt.life = 1.0
	}
	pt.maxLife = pt.life

	p.alive++
}

// visual computes the rendered size and alpha for a particle: size is
// interpolated by the elapsed-life fraction, alpha follows the remaining-life
// fraction. Color is the spec's start color only (end color is not
// interpolated).
func (pt *particle) visual(spec *EmitterSpec) (size, alpha float64) {
	remaining := pt.life / pt.maxLife
	elapsed := 1 - remaining
	size = spec.StartSize + (spec.EndSize-spec.StartSize)*elapsed
	return size, remaining
}
