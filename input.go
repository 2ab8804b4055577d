package glimmer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input is the per-frame input snapshot handed to scripts and hosts. Axis
// components are normalized to [-1, 1]. Action carries the level state of the
// primary action control and ActionPressed its edge-triggered counterpart.
// Pointer is in absolute screen pixels.
type Input struct {
	Axis          Vec2
	Action        bool
	ActionPressed bool

	Pointer        Vec2
	PointerDown    bool
	PointerPressed bool

	down    map[string]bool
	pressed map[string]bool
}

// NewInput creates an empty input snapshot.
func NewInput() *Input {
	return &Input{
		down:    make(map[string]bool),
		pressed: make(map[string]bool),
	}
}

// Down reports whether the named key or button is currently held.
func (in *Input) Down(name string) bool { return in.down[name] }

// Pressed reports whether the named key or button went down this frame.
func (in *Input) Pressed(name string) bool { return in.pressed[name] }

// setKey records one key's state for this frame.
func (in *Input) setKey(name string, down, pressed bool) {
	in.down[name] = down
	in.pressed[name] = pressed
}

// Reset clears all per-frame state. Sources repopulate the snapshot after.
func (in *Input) Reset() {
	in.Axis = Vec2{}
	in.Action = false
	in.ActionPressed = false
	in.PointerDown = false
	in.PointerPressed = false
	clear(in.down)
	clear(in.pressed)
}

// namedKeys is the key set exposed to script Down/Pressed queries.
var namedKeys = map[string]ebiten.Key{
	"up":    ebiten.KeyArrowUp,
	"down":  ebiten.KeyArrowDown,
	"left":  ebiten.KeyArrowLeft,
	"right": ebiten.KeyArrowRight,
	"space": ebiten.KeySpace,
	"enter": ebiten.KeyEnter,
	"shift": ebiten.KeyShift,
	"w":     ebiten.KeyW,
	"a":     ebiten.KeyA,
	"s":     ebiten.KeyS,
	"d":     ebiten.KeyD,
	"e":     ebiten.KeyE,
	"q":     ebiten.KeyQ,
	"z":     ebiten.KeyZ,
	"x":     ebiten.KeyX,
}

// ReadKeyboard refreshes the snapshot from the keyboard and mouse: WASD and
// arrow keys drive the axis, space the action, and the left mouse button the
// pointer state. Call once per frame before stepping the simulation.
func (in *Input) ReadKeyboard() {
	in.Reset()

	for name, key := range namedKeys {
		in.setKey(name, ebiten.IsKeyPressed(key), inpututil.IsKeyJustPressed(key))
	}

	if in.down["left"] || in.down["a"] {
		in.Axis.X -= 1
	}
	if in.down["right"] || in.down["d"] {
		in.Axis.X += 1
	}
	if in.down["up"] || in.down["w"] {
		in.Axis.Y -= 1
	}
	if in.down["down"] || in.down["s"] {
		in.Axis.Y += 1
	}

	in.Action = in.down["space"]
	in.ActionPressed = in.pressed["space"]

	mx, my := ebiten.CursorPosition()
	in.Pointer = Vec2{float64(mx), float64(my)}
	in.PointerDown = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	in.PointerPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}
