package glimmer

import (
	"github.com/jakecoffman/cp/v2"
)

// DefaultGravity is applied when the scene has no physics settings or a zero
// gravity vector.
var DefaultGravity = Vec2{0, 900}

const defaultBodyMass = 1.0

// physicsWorld maps physics-enabled entities to rigid bodies in a Chipmunk
// space. The world exists only between play-start and play-stop; after each
// fixed step the body pose is copied straight back into the entity transform,
// which therefore remains authoritative once the world is torn down.
type physicsWorld struct {
	space  *cp.Space
	bodies map[string]*cp.Body // entity id -> body
}

// newPhysicsWorld creates the space and one body per physics-enabled entity.
func newPhysicsWorld(s *Scene) *physicsWorld {
	space := cp.NewSpace()

	gravity := DefaultGravity
	if s.Physics != nil && (s.Physics.Gravity != Vec2{}) {
		gravity = s.Physics.Gravity
	}
	space.SetGravity(cp.Vector{X: gravity.X, Y: gravity.Y})

	w := &physicsWorld{
		space:  space,
		bodies: make(map[string]*cp.Body),
	}
	for _, e := range s.Entities {
		if e.Physics != nil {
			w.addBody(e)
		}
	}
	return w
}

// addBody creates the rigid body and collision shape for one entity.
// Rectangles become boxes of width*scale.x by height*scale.y; circles use
// radius width*scale.x/2. Rotation crosses the degree/radian boundary here.
func (w *physicsWorld) addBody(e *Entity) {
	width, height := 40.0, 40.0
	shapeKind := ShapeRectangle
	if e.Render != nil {
		width = e.Render.Width
		height = e.Render.Height
		shapeKind = e.Render.Shape
	}
	width *= e.Transform.Scale.X
	height *= e.Transform.Scale.Y

	var body *cp.Body
	if e.Physics.Static {
		body = cp.NewStaticBody()
	} else if shapeKind == ShapeCircle {
		body = cp.NewBody(defaultBodyMass, cp.MomentForCircle(defaultBodyMass, 0, width/2, cp.Vector{}))
	} else {
		body = cp.NewBody(defaultBodyMass, cp.MomentForBox(defaultBodyMass, width, height))
	}
	w.space.AddBody(body)

	body.SetPosition(cp.Vector{X: e.Transform.Position.X, Y: e.Transform.Position.Y})
	body.SetAngle(Deg2Rad(e.Transform.Rotation))
	if !e.Physics.Static {
		body.SetVelocity(e.Physics.Velocity.X, e.Physics.Velocity.Y)
		if scale := e.Physics.GravityFactor(); scale != 1 {
			body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
				cp.BodyUpdateVelocity(b, gravity.Mult(scale), damping, dt)
			})
		}
	}

	var shape *cp.Shape
	if shapeKind == ShapeCircle {
		shape = cp.NewCircle(body, width/2, cp.Vector{})
	} else {
		shape = cp.NewBox(body, width, height, 0)
	}
	shape.SetFriction(0.7)
	shape.SetElasticity(0.1)
	w.space.AddShape(shape)

	w.bodies[e.ID] = body
}

// step advances the space by one fixed timestep and copies every body's pose
// back into its entity transform (direct copy, no smoothing).
func (w *physicsWorld) step(s *Scene, dt float64) {
	w.space.Step(dt)
	for _, e := range s.Entities {
		body, ok := w.bodies[e.ID]
		if !ok {
			continue
		}
		pos := body.Position()
		e.Transform.Position = Vec2{pos.X, pos.Y}
		e.Transform.Rotation = Rad2Deg(body.Angle())
	}
}
