package glimmer

// Camera resolves the persisted CameraSpec against a scene each frame:
// the effective follow position is the follow target's position (if the id
// resolves) plus the manual pan offset.
//
// The view places the follow position at the canvas center and scales by
// zoom. Individual entities multiply the follow position by their parallax
// factor, so the camera itself carries no parallax state.
type Camera struct {
	Zoom   float64
	Follow Vec2
}

// ResolveCamera computes the effective camera for one frame. A nil spec
// yields the identity camera (zoom 1, origin follow).
func ResolveCamera(s *Scene) Camera {
	cam := Camera{Zoom: 1}
	spec := s.Camera
	if spec == nil {
		return cam
	}
	if spec.Zoom > 0 {
		cam.Zoom = spec.Zoom
	}
	cam.Follow = spec.Pan
	if spec.Follow != "" {
		if target := s.Find(spec.Follow); target != nil {
			cam.Follow = target.Transform.Position.Add(spec.Pan)
		}
	}
	return cam
}

// viewMatrix is Translate(canvasCenter) * Scale(zoom). Parallax-adjusted
// entity offsets are applied per entity on top of this.
func (c Camera) viewMatrix(canvasW, canvasH float64) [6]float64 {
	return [6]float64{c.Zoom, 0, 0, c.Zoom, canvasW / 2, canvasH / 2}
}

// WorldPosition returns the parallax-adjusted world-space draw position for
// an entity: its position minus the camera follow position scaled by the
// entity's parallax factor.
func (c Camera) WorldPosition(e *Entity) Vec2 {
	parallax := 1.0
	if e.Render != nil {
		parallax = e.Render.ParallaxFactor()
	}
	return e.Transform.Position.Sub(c.Follow.Mul(parallax))
}

// ScreenPosition converts an entity's parallax-adjusted world position to
// screen coordinates on a canvas of the given size. UI entities resolve
// through their anchor instead and bypass the camera entirely.
func (c Camera) ScreenPosition(e *Entity, canvasW, canvasH float64) Vec2 {
	if e.Transform.IsUI {
		return UIScreenPosition(e.Transform, canvasW, canvasH)
	}
	p := c.WorldPosition(e)
	x, y := transformPoint(c.viewMatrix(canvasW, canvasH), p.X, p.Y)
	return Vec2{x, y}
}

// ScreenToWorld converts screen coordinates to world coordinates for a
// parallax factor of 1.
func (c Camera) ScreenToWorld(sx, sy, canvasW, canvasH float64) Vec2 {
	inv := invertAffine(c.viewMatrix(canvasW, canvasH))
	x, y := transformPoint(inv, sx, sy)
	return Vec2{x + c.Follow.X, y + c.Follow.Y}
}
