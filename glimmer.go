package glimmer

import (
	"image/color"
	"math/rand/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// WithAlpha returns the color with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by s.
func (v Vec2) Mul(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Range is a general-purpose min/max range used by the particle emitter.
type Range struct {
	Min, Max float64
}

// Random returns a uniformly distributed value in [Min, Max].
func (r Range) Random() float64 {
	if r.Min >= r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// centered builds a Range from a center value and a total spread, matching the
// "value ± range/2" sampling convention used across emitter configs.
func centered(center, spread float64) Range {
	return Range{Min: center - spread/2, Max: center + spread/2}
}

// ShapeKind selects what an entity's renderer draws.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeSprite    ShapeKind = "sprite"
	ShapeText      ShapeKind = "text"
	ShapeButton    ShapeKind = "button"
)

// Anchor names one of the nine canvas anchor points used by UI entities.
// UI entities resolve their screen position from the anchor plus their raw
// position as an offset, bypassing the camera transform entirely.
type Anchor string

const (
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopCenter    Anchor = "top-center"
	AnchorTopRight     Anchor = "top-right"
	AnchorMiddleLeft   Anchor = "middle-left"
	AnchorCenter       Anchor = "center"
	AnchorMiddleRight  Anchor = "middle-right"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomCenter Anchor = "bottom-center"
	AnchorBottomRight  Anchor = "bottom-right"
)

// Point resolves the anchor to an absolute position on a canvas of the given
// size. Unknown anchors resolve to the top-left corner.
func (a Anchor) Point(canvasW, canvasH float64) Vec2 {
	var p Vec2
	switch a {
	case AnchorTopCenter, AnchorCenter, AnchorBottomCenter:
		p.X = canvasW / 2
	case AnchorTopRight, AnchorMiddleRight, AnchorBottomRight:
		p.X = canvasW
	}
	switch a {
	case AnchorMiddleLeft, AnchorCenter, AnchorMiddleRight:
		p.Y = canvasH / 2
	case AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight:
		p.Y = canvasH
	}
	return p
}
