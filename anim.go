package glimmer

import (
	"math"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// fieldResolver locates the numeric field a dotted animation path targets on
// an entity, or nil when the owning component is absent.
type fieldResolver func(*Entity) *float64

// fieldRegistry maps dotted property paths to typed accessors. Paths are
// resolved here once per animation when an animator is built, not re-walked
// by string lookup every frame.
var fieldRegistry = map[string]fieldResolver{
	"transform.position.x": func(e *Entity) *float64 { return &e.Transform.Position.X },
	"transform.position.y": func(e *Entity) *float64 { return &e.Transform.Position.Y },
	"transform.rotation":   func(e *Entity) *float64 { return &e.Transform.Rotation },
	"transform.scale.x":    func(e *Entity) *float64 { return &e.Transform.Scale.X },
	"transform.scale.y":    func(e *Entity) *float64 { return &e.Transform.Scale.Y },

	"renderer.color.r":  rendererField(func(r *RenderSpec) *float64 { return &r.Color.R }),
	"renderer.color.g":  rendererField(func(r *RenderSpec) *float64 { return &r.Color.G }),
	"renderer.color.b":  rendererField(func(r *RenderSpec) *float64 { return &r.Color.B }),
	"renderer.color.a":  rendererField(func(r *RenderSpec) *float64 { return &r.Color.A }),
	"renderer.width":    rendererField(func(r *RenderSpec) *float64 { return &r.Width }),
	"renderer.height":   rendererField(func(r *RenderSpec) *float64 { return &r.Height }),
	"renderer.fontSize": rendererField(func(r *RenderSpec) *float64 { return &r.FontSize }),

	"physics.velocity.x": func(e *Entity) *float64 {
		if e.Physics == nil {
			return nil
		}
		return &e.Physics.Velocity.X
	},
	"physics.velocity.y": func(e *Entity) *float64 {
		if e.Physics == nil {
			return nil
		}
		return &e.Physics.Velocity.Y
	},

	"emitter.rate":  emitterField(func(s *EmitterSpec) *float64 { return &s.Rate }),
	"emitter.angle": emitterField(func(s *EmitterSpec) *float64 { return &s.Angle }),
	"emitter.speed": emitterField(func(s *EmitterSpec) *float64 { return &s.Speed }),
}

func rendererField(pick func(*RenderSpec) *float64) fieldResolver {
	return func(e *Entity) *float64 {
		if e.Render == nil {
			return nil
		}
		return pick(e.Render)
	}
}

func emitterField(pick func(*EmitterSpec) *float64) fieldResolver {
	return func(e *Entity) *float64 {
		if e.Emitter == nil {
			return nil
		}
		return pick(e.Emitter)
	}
}

// easeByName resolves a keyframe easing name to a gween ease function.
// Empty and unknown names fall back to linear.
func easeByName(name string) ease.TweenFunc {
	switch strings.ToLower(name) {
	case "", "linear":
		return ease.Linear
	case "in-quad":
		return ease.InQuad
	case "out-quad":
		return ease.OutQuad
	case "in-out-quad":
		return ease.InOutQuad
	case "in-cubic":
		return ease.InCubic
	case "out-cubic":
		return ease.OutCubic
	case "in-out-cubic":
		return ease.InOutCubic
	case "in-sine":
		return ease.InSine
	case "out-sine":
		return ease.OutSine
	case "in-out-sine":
		return ease.InOutSine
	case "out-bounce":
		return ease.OutBounce
	case "out-elastic":
		return ease.OutElastic
	default:
		return ease.Linear
	}
}

// animator evaluates one AnimationSpec against its entity. The property path
// and per-segment easing functions are resolved once at construction.
type animator struct {
	spec    *AnimationSpec
	entity  *Entity
	resolve fieldResolver // nil for unknown paths
	easing  []ease.TweenFunc
}

// newAnimator builds an animator for one animation. Keyframes are stably
// sorted by time so unsorted input behaves deterministically; for exact
// duplicate times the bracketing scan yields the earlier keyframe's segment
// at fraction 0, so the later authored value takes over as soon as the cursor
// passes the shared time.
func newAnimator(e *Entity, spec *AnimationSpec) *animator {
	sort.SliceStable(spec.Keyframes, func(i, j int) bool {
		return spec.Keyframes[i].Time < spec.Keyframes[j].Time
	})
	a := &animator{
		spec:    spec,
		entity:  e,
		resolve: fieldRegistry[spec.Target],
		easing:  make([]ease.TweenFunc, len(spec.Keyframes)),
	}
	for i, kf := range spec.Keyframes {
		a.easing[i] = easeByName(kf.Easing)
	}
	return a
}

// update advances the animation cursor by dt and assigns the interpolated
// value. Animations that are stopped, have fewer than two keyframes, or
// target an unresolvable path do nothing; the failure is silent and scoped to
// this animation alone.
func (a *animator) update(dt float64) {
	spec := a.spec
	if !spec.Playing || len(spec.Keyframes) < 2 {
		return
	}

	end := spec.Keyframes[len(spec.Keyframes)-1].Time
	spec.CurrentTime += dt
	if spec.Loop {
		if spec.CurrentTime > end {
			if end > 0 {
				spec.CurrentTime = math.Mod(spec.CurrentTime, end)
			} else {
				spec.CurrentTime = 0
			}
		}
	} else if spec.CurrentTime >= end {
		// Terminal: clamp to the final keyframe and stop.
		spec.CurrentTime = end
		spec.Playing = false
	}

	if a.resolve == nil {
		return
	}
	field := a.resolve(a.entity)
	if field == nil {
		return
	}
	*field = a.valueAt(spec.CurrentTime)
}

// valueAt evaluates the keyframe curve at time t using a linear scan for the
// bracketing pair. t is assumed within [first, last] keyframe time.
func (a *animator) valueAt(t float64) float64 {
	kfs := a.spec.Keyframes
	if t <= kfs[0].Time {
		return kfs[0].Value
	}
	for i := 0; i < len(kfs)-1; i++ {
		k0, k1 := kfs[i], kfs[i+1]
		if t > k1.Time {
			continue
		}
		span := k1.Time - k0.Time
		if span <= 0 {
			return k1.Value
		}
		frac := (t - k0.Time) / span
		fn := a.easing[i]
		return float64(fn(float32(frac), float32(k0.Value), float32(k1.Value-k0.Value), 1))
	}
	return kfs[len(kfs)-1].Value
}
