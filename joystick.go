package glimmer

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Joystick is the on-screen control pair the standalone player overlays on
// the scene: a radial stick in the bottom-left corner and an action button in
// the bottom-right. It feeds the same Input contract as the keyboard source,
// so scripts cannot tell the difference.
//
// Mouse and touch both drive it; a touch (or press) landing in the stick zone
// is captured until release.
type Joystick struct {
	StickCenter  Vec2
	StickRadius  float64
	ButtonCenter Vec2
	ButtonRadius float64

	// Transform maps raw pointer coordinates into the joystick's coordinate
	// space. Hosts drawing to a letterboxed virtual canvas set this to the
	// window-to-canvas mapping; nil means identity.
	Transform func(x, y float64) (float64, float64)

	stickTouch  ebiten.TouchID
	stickMouse  bool
	stickActive bool
	knob        Vec2 // normalized stick offset in [-1, 1] per axis

	buttonDown bool
	touchIDs   []ebiten.TouchID
}

// NewJoystick creates the overlay with zero geometry; call Layout before use.
func NewJoystick() *Joystick {
	return &Joystick{stickTouch: -1}
}

// Layout positions the controls for a canvas of the given size.
func (j *Joystick) Layout(w, h float64) {
	j.StickRadius = 56
	j.ButtonRadius = 36
	j.StickCenter = Vec2{24 + j.StickRadius, h - 24 - j.StickRadius}
	j.ButtonCenter = Vec2{w - 24 - j.ButtonRadius, h - 24 - j.ButtonRadius}
}

// Update reads pointer state and merges the joystick axes and action button
// into the input snapshot. Call after the snapshot's other sources so a held
// keyboard key and a held button both register.
func (j *Joystick) Update(in *Input) {
	wasDown := j.buttonDown
	j.buttonDown = false

	j.trackStick()
	j.trackButton()

	if j.stickActive {
		in.Axis.X = clampAxis(in.Axis.X + j.knob.X)
		in.Axis.Y = clampAxis(in.Axis.Y + j.knob.Y)
	}
	if j.buttonDown {
		in.Action = true
		if !wasDown {
			in.ActionPressed = true
		}
		in.setKey("action", true, !wasDown)
	}
}

// pos converts a raw pointer position through the optional Transform.
func (j *Joystick) pos(px, py int) (float64, float64) {
	x, y := float64(px), float64(py)
	if j.Transform != nil {
		return j.Transform(x, y)
	}
	return x, y
}

func (j *Joystick) trackStick() {
	if j.stickActive {
		var x, y float64
		released := false
		if j.stickMouse {
			x, y = j.pos(ebiten.CursorPosition())
			released = !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
		} else {
			if inpututil.IsTouchJustReleased(j.stickTouch) {
				released = true
			} else {
				x, y = j.pos(ebiten.TouchPosition(j.stickTouch))
			}
		}
		if released {
			j.stickActive = false
			j.stickMouse = false
			j.stickTouch = -1
			j.knob = Vec2{}
			return
		}
		j.knob = j.normalize(x, y)
		return
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := j.pos(ebiten.CursorPosition())
		if j.inStickZone(x, y) {
			j.stickActive = true
			j.stickMouse = true
			j.knob = j.normalize(x, y)
			return
		}
	}
	j.touchIDs = inpututil.AppendJustPressedTouchIDs(j.touchIDs[:0])
	for _, id := range j.touchIDs {
		x, y := j.pos(ebiten.TouchPosition(id))
		if j.inStickZone(x, y) {
			j.stickActive = true
			j.stickTouch = id
			j.knob = j.normalize(x, y)
			return
		}
	}
}

func (j *Joystick) trackButton() {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := j.pos(ebiten.CursorPosition())
		if j.inButtonZone(x, y) {
			j.buttonDown = true
			return
		}
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		x, y := j.pos(ebiten.TouchPosition(id))
		if j.inButtonZone(x, y) {
			j.buttonDown = true
			return
		}
	}
}

// normalize maps a pointer position to a knob offset clamped to the unit
// circle.
func (j *Joystick) normalize(x, y float64) Vec2 {
	dx := (x - j.StickCenter.X) / j.StickRadius
	dy := (y - j.StickCenter.Y) / j.StickRadius
	if mag := math.Hypot(dx, dy); mag > 1 {
		dx /= mag
		dy /= mag
	}
	return Vec2{dx, dy}
}

// inStickZone is generous: anything within twice the stick radius captures,
// which keeps fast thumb plants from missing the control.
func (j *Joystick) inStickZone(x, y float64) bool {
	return math.Hypot(x-j.StickCenter.X, y-j.StickCenter.Y) <= j.StickRadius*2
}

func (j *Joystick) inButtonZone(x, y float64) bool {
	return math.Hypot(x-j.ButtonCenter.X, y-j.ButtonCenter.Y) <= j.ButtonRadius*1.5
}

// Draw renders the overlay.
func (j *Joystick) Draw(screen *ebiten.Image) {
	base := color.RGBA{255, 255, 255, 48}
	knob := color.RGBA{255, 255, 255, 112}

	vector.DrawFilledCircle(screen, float32(j.StickCenter.X), float32(j.StickCenter.Y),
		float32(j.StickRadius), base, true)
	kx := j.StickCenter.X + j.knob.X*j.StickRadius*0.6
	ky := j.StickCenter.Y + j.knob.Y*j.StickRadius*0.6
	vector.DrawFilledCircle(screen, float32(kx), float32(ky),
		float32(j.StickRadius*0.45), knob, true)

	buttonColor := base
	if j.buttonDown {
		buttonColor = knob
	}
	vector.DrawFilledCircle(screen, float32(j.ButtonCenter.X), float32(j.ButtonCenter.Y),
		float32(j.ButtonRadius), buttonColor, true)
}

func clampAxis(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
