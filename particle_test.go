package glimmer

import (
	"math"
	"testing"
)

func testEmitter(max int) *EmitterSpec {
	return &EmitterSpec{
		Emitting:     true,
		Rate:         100,
		MaxParticles: max,
		Lifetime:     1.0,
		Speed:        100,
		Angle:        0,
		StartSize:    8,
		EndSize:      2,
		StartColor:   ColorWhite,
	}
}

func TestEmitterPoolPreallocated(t *testing.T) {
	pool := newEmitterPool(testEmitter(500))
	if len(pool.particles) != 500 {
		t.Errorf("pool size = %d, want 500", len(pool.particles))
	}
	if pool.AliveCount() != 0 {
		t.Errorf("alive = %d, want 0", pool.AliveCount())
	}
}

func TestEmitterPoolDefaultMax(t *testing.T) {
	pool := newEmitterPool(&EmitterSpec{})
	if len(pool.particles) != defaultMaxParticles {
		t.Errorf("default pool size = %d, want %d", len(pool.particles), defaultMaxParticles)
	}
}

func TestParticleCapNeverExceeded(t *testing.T) {
	spec := testEmitter(100)
	spec.Rate = 10
	spec.Lifetime = 1e9 // effectively immortal for this test
	pool := newEmitterPool(spec)

	for i := 0; i < 100; i++ {
		pool.update(spec, Vec2{}, 0.05)
		if pool.AliveCount() > 100 {
			t.Fatalf("step %d: alive = %d exceeds cap 100", i, pool.AliveCount())
		}
	}
}

func TestParticlePoolSaturatesAtCap(t *testing.T) {
	// rate*dt = 2 exactly, so emission is deterministic: two particles per
	// step, saturating a 100-slot pool after 50 steps.
	spec := testEmitter(100)
	spec.Rate = 40
	spec.Lifetime = 1e9
	pool := newEmitterPool(spec)

	for i := 0; i < 200; i++ {
		pool.update(spec, Vec2{}, 0.05)
		if pool.AliveCount() > 100 {
			t.Fatalf("alive = %d exceeds cap", pool.AliveCount())
		}
	}
	if pool.AliveCount() != 100 {
		t.Errorf("alive = %d, want saturation at exactly 100", pool.AliveCount())
	}
}

func TestParticlesAgeAndDie(t *testing.T) {
	spec := testEmitter(10)
	spec.Lifetime = 0.2
	spec.LifetimeRange = 0
	pool := newEmitterPool(spec)

	pool.update(spec, Vec2{}, 0.05) // spawns some
	if pool.AliveCount() == 0 {
		t.Fatal("expected spawned particles")
	}

	spec.Emitting = false
	for i := 0; i < 10; i++ {
		pool.update(spec, Vec2{}, 0.05)
	}
	if pool.AliveCount() != 0 {
		t.Errorf("alive = %d, want 0 after lifetime elapsed", pool.AliveCount())
	}
}

func TestParticleMovesByVelocity(t *testing.T) {
	spec := testEmitter(1)
	spec.Rate = 20 // rate*dt = 1: exactly one spawn
	spec.Speed = 100
	spec.SpeedRange = 0
	spec.Angle = 0
	spec.Spread = 0
	pool := newEmitterPool(spec)

	pool.update(spec, Vec2{X: 5, Y: 7}, 0.05)
	if pool.AliveCount() != 1 {
		t.Fatalf("alive = %d, want 1", pool.AliveCount())
	}
	p := pool.particles[0]
	if p.x != 5 || p.y != 7 {
		t.Errorf("spawn position = (%v, %v), want emitter origin (5, 7)", p.x, p.y)
	}
	if math.Abs(p.vx-100) > 1e-9 || math.Abs(p.vy) > 1e-9 {
		t.Errorf("velocity = (%v, %v), want (100, 0)", p.vx, p.vy)
	}

	spec.Emitting = false
	pool.update(spec, Vec2{}, 0.1)
	if math.Abs(pool.particles[0].x-15) > 1e-9 {
		t.Errorf("x = %v, want 15 after 0.1s at 100 px/s", pool.particles[0].x)
	}
}

func TestParticleVisualInterpolation(t *testing.T) {
	spec := testEmitter(1)
	pt := particle{life: 0.25, maxLife: 1.0}

	size, alpha := pt.visual(spec)
	// 75% elapsed: size 8 -> 2 gives 3.5; alpha follows remaining life 0.25.
	if math.Abs(size-3.5) > 1e-9 {
		t.Errorf("size = %v, want 3.5", size)
	}
	if math.Abs(alpha-0.25) > 1e-9 {
		t.Errorf("alpha = %v, want 0.25", alpha)
	}
}

func TestParticleSpawnSamplingRanges(t *testing.T) {
	spec := testEmitter(1000)
	spec.Rate = 20000
	spec.Lifetime = 2.0
	spec.LifetimeRange = 1.0
	spec.Speed = 50
	spec.SpeedRange = 20
	pool := newEmitterPool(spec)

	pool.update(spec, Vec2{}, 0.05)
	for i := 0; i < pool.alive; i++ {
		p := pool.particles[i]
		if p.maxLife < 1.5-1e-9 || p.maxLife > 2.5+1e-9 {
			t.Fatalf("lifetime %v outside 2.0 ± 0.5", p.maxLife)
		}
		speed := math.Hypot(p.vx, p.vy)
		if speed < 40-1e-9 || speed > 60+1e-9 {
			t.Fatalf("speed %v outside 50 ± 10", speed)
		}
	}
}
