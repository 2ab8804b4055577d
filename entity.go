package glimmer

import (
	"encoding/json"

	uuid "github.com/satori/go.uuid"
)

// Transform is an entity's placement in the world (or on screen, for UI
// entities). Rotation is in degrees everywhere in the data model; conversion
// to radians happens only at the physics and render boundaries.
type Transform struct {
	Position Vec2    `json:"position"`
	Rotation float64 `json:"rotation"`
	Scale    Vec2    `json:"scale"`
	IsUI     bool    `json:"isUI,omitempty"`
	Anchor   Anchor  `json:"anchor,omitempty"`
}

// PhysicsSpec opts an entity into rigid-body simulation. A body is created at
// play-start and destroyed at play-stop; while playing, the body position is
// authoritative and is copied back into the transform each fixed step.
type PhysicsSpec struct {
	Velocity Vec2 `json:"velocity"`
	Static   bool `json:"static,omitempty"`
	// GravityScale multiplies the world gravity for this body.
	// nil means 1.0.
	GravityScale *float64 `json:"gravityScale,omitempty"`
}

// GravityFactor returns the effective gravity multiplier.
func (p *PhysicsSpec) GravityFactor() float64 {
	if p.GravityScale == nil {
		return 1.0
	}
	return *p.GravityScale
}

// RenderSpec describes how an entity is drawn.
type RenderSpec struct {
	Shape  ShapeKind `json:"shape"`
	Color  Color     `json:"color"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`

	// Sprite sheet fields. Sprite is a URL resolved through the asset cache.
	Sprite string `json:"sprite,omitempty"`
	Cols   int    `json:"cols,omitempty"`
	Rows   int    `json:"rows,omitempty"`
	Frame  int    `json:"frame,omitempty"`

	// Text / button label fields.
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	// Parallax multiplies the camera offset for this entity.
	// nil means 1.0 (no depth effect); 0 pins the entity to the world origin
	// regardless of camera movement.
	Parallax *float64 `json:"parallax,omitempty"`
}

// ParallaxFactor returns the effective parallax multiplier.
func (r *RenderSpec) ParallaxFactor() float64 {
	if r.Parallax == nil {
		return 1.0
	}
	return *r.Parallax
}

// EmitterSpec configures an entity's particle emitter. Angles are in degrees.
// Sampling follows the "center ± spread/2" convention: a spawned particle's
// direction is Angle ± Spread/2, its speed Speed ± SpeedRange/2, and its
// lifetime Lifetime ± LifetimeRange/2, all uniform.
type EmitterSpec struct {
	Emitting      bool    `json:"emitting"`
	Rate          float64 `json:"rate"`
	MaxParticles  int     `json:"maxParticles"`
	Lifetime      float64 `json:"lifetime"`
	LifetimeRange float64 `json:"lifetimeRange,omitempty"`
	Speed         float64 `json:"speed"`
	SpeedRange    float64 `json:"speedRange,omitempty"`
	Angle         float64 `json:"angle"`
	Spread        float64 `json:"spread,omitempty"`
	StartSize     float64 `json:"startSize"`
	EndSize       float64 `json:"endSize"`
	// EndColor is retained for forward compatibility but not interpolated;
	// rendering uses StartColor only.
	StartColor Color `json:"startColor"`
	EndColor   Color `json:"endColor"`
}

// TilemapSpec describes a grid of tiles drawn from a tileset image. Layers
// are drawn in order; each layer holds Cols*Rows tile indices in row-major
// order, -1 marking an empty cell.
type TilemapSpec struct {
	TileSize int     `json:"tileSize"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	Layers   [][]int `json:"layers"`
	Tileset  string  `json:"tileset"`
}

// Keyframe is one (time, value) sample of a piecewise animation curve.
// Easing optionally names a gween ease function applied to the segment
// starting at this keyframe; empty or unknown names mean linear.
type Keyframe struct {
	Time   float64 `json:"time"`
	Value  float64 `json:"value"`
	Easing string  `json:"easing,omitempty"`
}

// AnimationSpec animates a single numeric property of its entity, addressed
// by a dotted path such as "transform.position.x". CurrentTime is the
// playback cursor, always within [0, last keyframe time].
type AnimationSpec struct {
	Target      string     `json:"target"`
	Keyframes   []Keyframe `json:"keyframes"`
	Loop        bool       `json:"loop,omitempty"`
	Playing     bool       `json:"playing"`
	CurrentTime float64    `json:"currentTime"`
}

// Entity is a single scene object: a transform plus optional physics,
// renderer, particle, tilemap, animation, and script components.
type Entity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Transform Transform `json:"transform"`

	Physics    *PhysicsSpec    `json:"physics,omitempty"`
	Render     *RenderSpec     `json:"renderer,omitempty"`
	Emitter    *EmitterSpec    `json:"emitter,omitempty"`
	Tilemap    *TilemapSpec    `json:"tilemap,omitempty"`
	Animations []AnimationSpec `json:"animations,omitempty"`
	Script     string          `json:"script,omitempty"`

	// PrefabID records the id of the entity this one was instantiated from,
	// if any.
	PrefabID string `json:"prefabId,omitempty"`
}

// NewEntity creates an entity with a fresh id and sane defaults: unit scale,
// a 40x40 white rectangle renderer, parallax 1.
func NewEntity(name string) *Entity {
	return &Entity{
		ID:   NewID(),
		Name: name,
		Transform: Transform{
			Scale: Vec2{1, 1},
		},
		Render: &RenderSpec{
			Shape:  ShapeRectangle,
			Color:  ColorWhite,
			Width:  40,
			Height: 40,
		},
	}
}

// NewID returns a fresh unique entity id.
func NewID() string {
	return uuid.NewV4().String()
}

// Clone returns a deep copy of the entity via a serialization round-trip.
// The copy shares no mutable state with the original. The id is preserved;
// callers instantiating prefabs must assign a fresh one.
func (e *Entity) Clone() *Entity {
	data, err := json.Marshal(e)
	if err != nil {
		// Entity contains only plain data; marshal cannot fail on well-formed
		// values. Preserve the invariant loudly rather than return nil.
		panic("glimmer: entity clone: " + err.Error())
	}
	out := &Entity{}
	if err := json.Unmarshal(data, out); err != nil {
		panic("glimmer: entity clone: " + err.Error())
	}
	return out
}
