package glimmer

import (
	"math"
	"testing"
)

func physicsScene(entities ...*Entity) *Scene {
	s := NewScene()
	for _, e := range entities {
		if err := s.Add(e); err != nil {
			panic(err)
		}
	}
	return s
}

func TestPhysicsTransformMatchesBodyExactly(t *testing.T) {
	e := NewEntity("box")
	e.Transform.Position = Vec2{100, 50}
	e.Physics = &PhysicsSpec{Velocity: Vec2{10, 0}}
	s := physicsScene(e)

	w := newPhysicsWorld(s)
	for i := 0; i < 30; i++ {
		w.step(s, s.FixedTimestep())
	}

	body := w.bodies[e.ID]
	if body == nil {
		t.Fatal("no body created for physics-enabled entity")
	}
	pos := body.Position()
	if e.Transform.Position.X != pos.X || e.Transform.Position.Y != pos.Y {
		t.Errorf("transform (%v, %v) != body (%v, %v): must be a direct copy",
			e.Transform.Position.X, e.Transform.Position.Y, pos.X, pos.Y)
	}
	if e.Transform.Rotation != Rad2Deg(body.Angle()) {
		t.Errorf("rotation %v != body angle %v deg", e.Transform.Rotation, Rad2Deg(body.Angle()))
	}
}

func TestPhysicsStaticBodyStaysPut(t *testing.T) {
	e := NewEntity("floor")
	e.Transform.Position = Vec2{0, 300}
	e.Physics = &PhysicsSpec{Static: true}
	s := physicsScene(e)

	w := newPhysicsWorld(s)
	for i := 0; i < 60; i++ {
		w.step(s, s.FixedTimestep())
	}

	if e.Transform.Position != (Vec2{0, 300}) {
		t.Errorf("static entity moved to %+v", e.Transform.Position)
	}
}

func TestPhysicsGravityPullsDynamicBody(t *testing.T) {
	e := NewEntity("ball")
	e.Render.Shape = ShapeCircle
	e.Physics = &PhysicsSpec{}
	s := physicsScene(e)

	w := newPhysicsWorld(s)
	for i := 0; i < 60; i++ {
		w.step(s, s.FixedTimestep())
	}

	if e.Transform.Position.Y <= 0 {
		t.Errorf("y = %v, want > 0 after a second of default gravity", e.Transform.Position.Y)
	}
}

func TestPhysicsGravityScaleZero(t *testing.T) {
	zero := 0.0
	e := NewEntity("floaty")
	e.Physics = &PhysicsSpec{Velocity: Vec2{50, 0}, GravityScale: &zero}
	s := physicsScene(e)

	w := newPhysicsWorld(s)
	for i := 0; i < 60; i++ {
		w.step(s, s.FixedTimestep())
	}

	if math.Abs(e.Transform.Position.Y) > 1e-6 {
		t.Errorf("y = %v, want 0: gravity scale 0 must cancel gravity", e.Transform.Position.Y)
	}
	if e.Transform.Position.X <= 0 {
		t.Errorf("x = %v, want forward motion preserved", e.Transform.Position.X)
	}
}

func TestPhysicsInitialRotationDegreeBoundary(t *testing.T) {
	e := NewEntity("tilted")
	e.Transform.Rotation = 90
	e.Physics = &PhysicsSpec{Static: true}
	s := physicsScene(e)

	w := newPhysicsWorld(s)
	body := w.bodies[e.ID]
	if math.Abs(body.Angle()-math.Pi/2) > 1e-9 {
		t.Errorf("body angle = %v rad, want pi/2 for 90 degrees", body.Angle())
	}
}

func TestSimPlayStopLifecycle(t *testing.T) {
	e := NewEntity("box")
	e.Physics = &PhysicsSpec{}
	s := physicsScene(e)
	sim := NewSim(s, &Logger{}, nil)

	sim.Step(nil, 0.1)
	if e.Transform.Position != (Vec2{}) {
		t.Fatal("Step must be a no-op before Play")
	}

	sim.Play()
	sim.Step(nil, 0.1)
	moved := e.Transform.Position

	if moved == (Vec2{}) {
		t.Fatal("entity did not move while playing")
	}

	sim.Stop()
	if sim.world != nil {
		t.Error("physics world must be torn down on Stop")
	}
	if e.Transform.Position != moved {
		t.Error("last synced transform must remain authoritative after Stop")
	}

	sim.Step(nil, 0.1)
	if e.Transform.Position != moved {
		t.Error("Step after Stop must not mutate the scene")
	}
}
