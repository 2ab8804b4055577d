package glimmer

import "math"

// ResizeHandle names one of the four rotated bounding-box corners.
type ResizeHandle string

const (
	HandleTL ResizeHandle = "tl"
	HandleTR ResizeHandle = "tr"
	HandleBL ResizeHandle = "bl"
	HandleBR ResizeHandle = "br"
)

type interactionState uint8

const (
	stateIdle interactionState = iota
	stateDragging
	stateResizing
	statePanning
)

const (
	handleRadius   = 8.0  // screen px
	minScale       = 0.05 // floor clamp against degenerate/inverted scale
	wheelScaleStep = 0.1
)

// Interaction is the editor's pointer state machine: selection, drag, corner
// resize, and empty-space panning are mutually exclusive states entered on
// pointer-down and left on pointer-up. Wheel zoom of the selected entity
// operates outside the state machine.
//
// Drag and resize mutate a private working copy; the scene model is written
// only on pointer-up (wheel commits immediately). The host feeds pointer
// events in screen pixels and renders the working copy for live feedback.
type Interaction struct {
	scene *Scene

	// CanvasW/CanvasH is the canvas size in screen pixels, and DPR the device
	// pixel ratio; the host refreshes these before dispatching events.
	CanvasW, CanvasH float64
	DPR              float64

	// Selected is the id of the currently selected entity, empty for none.
	Selected string

	state    interactionState
	handle   ResizeHandle
	working  *Entity
	targetID string
	last     Vec2
}

// NewInteraction creates the interaction layer for a scene.
func NewInteraction(scene *Scene) *Interaction {
	return &Interaction{scene: scene, DPR: 1}
}

// Working returns the private copy being dragged or resized, or nil when the
// state machine is idle or panning. Hosts draw this instead of the committed
// entity for live feedback.
func (it *Interaction) Working() *Entity {
	return it.working
}

// PointerDown transitions out of idle: a resize handle of the selected entity
// wins over entity hits, an entity hit starts a drag and selects it, and
// empty space starts a camera pan.
func (it *Interaction) PointerDown(x, y float64) {
	if it.state != stateIdle {
		return
	}
	it.last = Vec2{x, y}

	if sel := it.scene.Find(it.Selected); sel != nil {
		if h, ok := it.handleAt(sel, x, y); ok {
			it.state = stateResizing
			it.handle = h
			it.beginWorking(sel)
			return
		}
	}

	if e := it.HitTest(x, y); e != nil {
		it.Selected = e.ID
		it.state = stateDragging
		it.beginWorking(e)
		return
	}

	it.Selected = ""
	it.state = statePanning
}

// PointerMove advances the active gesture. No-op in idle.
func (it *Interaction) PointerMove(x, y float64) {
	delta := Vec2{x - it.last.X, y - it.last.Y}
	it.last = Vec2{x, y}

	switch it.state {
	case stateDragging:
		it.dragBy(delta)
	case stateResizing:
		it.resizeTo(x, y)
	case statePanning:
		it.panBy(delta)
	}
}

// PointerUp commits the working copy's transform to the scene model and
// returns to idle.
func (it *Interaction) PointerUp() {
	if it.working != nil {
		if target := it.scene.Find(it.targetID); target != nil {
			target.Transform = it.working.Transform
		}
		it.working = nil
		it.targetID = ""
	}
	it.state = stateIdle
}

// Wheel adjusts the selected entity's scale by a fixed step per notch,
// committing immediately (outside the state machine).
func (it *Interaction) Wheel(dy float64) {
	e := it.scene.Find(it.Selected)
	if e == nil || dy == 0 {
		return
	}
	step := wheelScaleStep
	if dy < 0 {
		step = -step
	}
	e.Transform.Scale.X = math.Max(minScale, e.Transform.Scale.X+step)
	e.Transform.Scale.Y = math.Max(minScale, e.Transform.Scale.Y+step)
}

func (it *Interaction) beginWorking(e *Entity) {
	it.working = e.Clone()
	it.targetID = e.ID
}

// dragBy moves the working copy in world units: screen delta divided by zoom
// for world entities, raw pixels for UI entities.
func (it *Interaction) dragBy(delta Vec2) {
	if it.working == nil {
		return
	}
	if !it.working.Transform.IsUI {
		zoom := ResolveCamera(it.scene).Zoom
		delta = delta.Mul(1 / zoom)
	}
	it.working.Transform.Position = it.working.Transform.Position.Add(delta)
}

// resizeTo updates the working copy's non-uniform scale from the pointer's
// local-space displacement: the pointer is inverse-rotated about the entity's
// screen position and each axis scale is set so the dragged corner tracks it,
// floor-clamped to avoid degenerate or inverted scale.
func (it *Interaction) resizeTo(x, y float64) {
	w := it.working
	if w == nil || w.Render == nil {
		return
	}
	cam := ResolveCamera(it.scene)
	center := cam.ScreenPosition(w, it.CanvasW, it.CanvasH)
	zoom := cam.Zoom
	if w.Transform.IsUI {
		zoom = 1
	}

	lx, ly := rotatePoint(x, y, center.X, center.Y, -w.Transform.Rotation)
	halfW := w.Render.Width * zoom / 2
	halfH := w.Render.Height * zoom / 2
	if halfW <= 0 || halfH <= 0 {
		return
	}
	w.Transform.Scale.X = math.Max(minScale, math.Abs(lx-center.X)/halfW)
	w.Transform.Scale.Y = math.Max(minScale, math.Abs(ly-center.Y)/halfH)
}

// panBy offsets the camera pan inversely to the pointer delta, scaled by the
// device pixel ratio and the inverse zoom. Writes the scene model directly;
// panning has no working copy.
func (it *Interaction) panBy(delta Vec2) {
	if it.scene.Camera == nil {
		it.scene.Camera = &CameraSpec{Zoom: 1}
	}
	zoom := ResolveCamera(it.scene).Zoom
	factor := it.DPR / zoom
	it.scene.Camera.Pan.X -= delta.X * factor
	it.scene.Camera.Pan.Y -= delta.Y * factor
}

// HitTest returns the topmost entity under the screen point, testing in
// reverse scene order so the last-drawn entity wins ties. The point is
// inverse-rotated into each candidate's local space about its
// parallax-adjusted screen position; circles use circle containment, all
// other shapes their bounding box.
func (it *Interaction) HitTest(x, y float64) *Entity {
	cam := ResolveCamera(it.scene)
	for i := len(it.scene.Entities) - 1; i >= 0; i-- {
		e := it.scene.Entities[i]
		if e.Render == nil {
			continue
		}
		if it.hits(cam, e, x, y) {
			return e
		}
	}
	return nil
}

func (it *Interaction) hits(cam Camera, e *Entity, x, y float64) bool {
	pos := cam.ScreenPosition(e, it.CanvasW, it.CanvasH)
	zoom := cam.Zoom
	if e.Transform.IsUI {
		zoom = 1
	}

	if e.Render.Shape == ShapeCircle {
		radius := e.Render.Width * e.Transform.Scale.X * zoom / 2
		dx, dy := x-pos.X, y-pos.Y
		return dx*dx+dy*dy <= radius*radius
	}

	lx, ly := rotatePoint(x, y, pos.X, pos.Y, -e.Transform.Rotation)
	halfW := e.Render.Width * e.Transform.Scale.X * zoom / 2
	halfH := e.Render.Height * e.Transform.Scale.Y * zoom / 2
	return math.Abs(lx-pos.X) <= halfW && math.Abs(ly-pos.Y) <= halfH
}

// Handles returns the screen positions of the four resize handles: the
// rotated bounding-box corners of the given entity.
func (it *Interaction) Handles(e *Entity) map[ResizeHandle]Vec2 {
	cam := ResolveCamera(it.scene)
	pos := cam.ScreenPosition(e, it.CanvasW, it.CanvasH)
	zoom := cam.Zoom
	if e.Transform.IsUI {
		zoom = 1
	}
	halfW, halfH := 20.0, 20.0
	if e.Render != nil {
		halfW = e.Render.Width * e.Transform.Scale.X * zoom / 2
		halfH = e.Render.Height * e.Transform.Scale.Y * zoom / 2
	}

	corners := map[ResizeHandle]Vec2{
		HandleTL: {-halfW, -halfH},
		HandleTR: {halfW, -halfH},
		HandleBL: {-halfW, halfH},
		HandleBR: {halfW, halfH},
	}
	out := make(map[ResizeHandle]Vec2, 4)
	for h, c := range corners {
		cx, cy := rotatePoint(pos.X+c.X, pos.Y+c.Y, pos.X, pos.Y, e.Transform.Rotation)
		out[h] = Vec2{cx, cy}
	}
	return out
}

func (it *Interaction) handleAt(e *Entity, x, y float64) (ResizeHandle, bool) {
	for h, p := range it.Handles(e) {
		dx, dy := x-p.X, y-p.Y
		if dx*dx+dy*dy <= handleRadius*handleRadius {
			return h, true
		}
	}
	return "", false
}
