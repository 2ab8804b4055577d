package glimmer

import (
	"math"
	"testing"
)

func TestSimAccumulatorCarriesRemainder(t *testing.T) {
	s := NewScene()
	zero := 0.0
	e := NewEntity("mover")
	e.Physics = &PhysicsSpec{Velocity: Vec2{60, 0}, GravityScale: &zero}
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	sim := NewSim(s, &Logger{}, nil)
	sim.Play()

	// Frames shorter than the fixed step accumulate until one step fires.
	sim.Step(nil, 0.01) // acc 0.01, no step
	if e.Transform.Position.X != 0 {
		t.Error("sub-timestep frame advanced physics")
	}
	sim.Step(nil, 0.01) // acc 0.02, one step, remainder ~0.0033
	if !approx(e.Transform.Position.X, 1) {
		t.Errorf("x = %v, want 1 after one fixed step", e.Transform.Position.X)
	}

	// A long frame drains as many whole steps as fit.
	sim.Step(nil, 0.05) // acc ~0.0533, three steps
	if !approx(e.Transform.Position.X, 4) {
		t.Errorf("x = %v, want 4", e.Transform.Position.X)
	}
}

func TestSimCapsFrameDelta(t *testing.T) {
	s := NewScene()
	zero := 0.0
	e := NewEntity("mover")
	e.Physics = &PhysicsSpec{Velocity: Vec2{60, 0}, GravityScale: &zero}
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	sim := NewSim(s, &Logger{}, nil)
	sim.Play()
	sim.Step(nil, 10) // ten-second stall clamps to 0.1s: six steps, not 600
	if e.Transform.Position.X > 6.0+1e-9 {
		t.Errorf("x = %v, stall was not clamped", e.Transform.Position.X)
	}
	if e.Transform.Position.X < 5 {
		t.Errorf("x = %v, clamped frame should still simulate ~0.1s", e.Transform.Position.X)
	}
}

func TestSimFrameOrderPhysicsBeforeScripts(t *testing.T) {
	// The script observes the transform already synced from this frame's
	// physics step, so reading entity.y after one exact-timestep frame sees
	// the post-step position.
	s := NewScene()
	zero := 0.0
	e := NewEntity("probe")
	e.Physics = &PhysicsSpec{Velocity: Vec2{0, 60}, GravityScale: &zero}
	e.Script = "entity.rotation = entity.y"
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()
	sim := NewSim(s, &Logger{}, h)
	sim.Play()
	sim.Step(NewInput(), 1.0/60.0)

	if !approx(e.Transform.Rotation, 1) {
		t.Errorf("script saw y = %v, want post-physics 1", e.Transform.Rotation)
	}
}

func TestSimScriptSpawnedEmitterEmits(t *testing.T) {
	s := NewScene()
	template := NewEntity("spark")
	template.Emitter = &EmitterSpec{
		Emitting:     true,
		Rate:         60,
		MaxParticles: 16,
		Lifetime:     1,
	}
	if err := s.Add(template); err != nil {
		t.Fatal(err)
	}
	spawner := NewEntity("gun")
	spawner.Script = "if pool.count() < 3 then pool.spawn('" + template.ID + "') end"
	if err := s.Add(spawner); err != nil {
		t.Fatal(err)
	}

	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()
	sim := NewSim(s, &Logger{}, h)
	sim.Play()

	sim.Step(NewInput(), 1.0/60.0) // spawns the copy
	if len(s.Entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(s.Entities))
	}
	spawned := s.Entities[2]

	sim.Step(NewInput(), 1.0/60.0) // copy gets a pool and emits
	if sim.Pool(spawned.ID) == nil {
		t.Fatal("spawned entity never got a particle pool")
	}
	if sim.Pool(spawned.ID).AliveCount() == 0 {
		t.Error("spawned emitter never emitted")
	}
}

func TestSimAnimatorsRebindAfterSpawn(t *testing.T) {
	s := NewScene()
	template := NewEntity("fader")
	template.Animations = []AnimationSpec{{
		Target:    "transform.position.x",
		Keyframes: []Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 100}},
		Playing:   true,
	}}
	if err := s.Add(template); err != nil {
		t.Fatal(err)
	}
	spawner := NewEntity("gun")
	spawner.Script = "if pool.count() < 3 then pool.spawn('" + template.ID + "') end"
	if err := s.Add(spawner); err != nil {
		t.Fatal(err)
	}

	h, _ := newTestHost(ScriptContextEditor)
	defer h.Close()
	sim := NewSim(s, &Logger{}, h)
	sim.Play()

	sim.Step(NewInput(), 0.25) // spawn happens after animation pass
	spawned := s.Entities[2]
	startX := spawned.Transform.Position.X

	sim.Step(NewInput(), 0.25) // rebound animator drives the copy
	if !(spawned.Transform.Position.X > startX) {
		t.Errorf("spawned entity animation never ran: x stayed at %v", spawned.Transform.Position.X)
	}
}

func TestSimStepRequiresPlay(t *testing.T) {
	s := NewScene()
	e := NewEntity("e")
	e.Animations = []AnimationSpec{{
		Target:    "transform.rotation",
		Keyframes: []Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 360}},
		Playing:   true,
	}}
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	sim := NewSim(s, &Logger{}, nil)
	sim.Step(nil, 0.5)
	if e.Transform.Rotation != 0 || e.Animations[0].CurrentTime != 0 {
		t.Error("Step before Play mutated the scene")
	}
	if sim.Playing() {
		t.Error("sim reports playing before Play")
	}
}

func TestSimStopDropsParticles(t *testing.T) {
	s := NewScene()
	e := NewEntity("spark")
	e.Emitter = &EmitterSpec{Emitting: true, Rate: 120, MaxParticles: 8, Lifetime: 1}
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	sim := NewSim(s, &Logger{}, nil)
	sim.Play()
	for i := 0; i < 10; i++ {
		sim.Step(nil, 1.0/60.0)
	}
	if sim.Pool(e.ID) == nil || sim.Pool(e.ID).AliveCount() == 0 {
		t.Fatal("emitter never emitted")
	}
	sim.Stop()
	if sim.Pool(e.ID) != nil {
		t.Error("particle pools survive Stop")
	}
}

func TestSimAnimationPausedCursorHolds(t *testing.T) {
	s := NewScene()
	e := NewEntity("e")
	e.Animations = []AnimationSpec{{
		Target:      "transform.position.x",
		Keyframes:   []Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 10}},
		Playing:     false,
		CurrentTime: 0.4,
	}}
	if err := s.Add(e); err != nil {
		t.Fatal(err)
	}

	sim := NewSim(s, &Logger{}, nil)
	sim.Play()
	sim.Step(nil, 0.5)
	if math.Abs(e.Animations[0].CurrentTime-0.4) > 1e-9 {
		t.Error("paused animation cursor moved")
	}
}
