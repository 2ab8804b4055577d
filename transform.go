package glimmer

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Deg2Rad converts degrees to radians. Rotation is stored in degrees
// throughout the data model; radians appear only at the physics and render
// boundaries.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }

// composeTransform builds the local affine matrix for an entity drawn at
// world position (tx, ty): Scale -> Rotate -> Translate.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func composeTransform(tx, ty, rotDeg, sx, sy float64) [6]float64 {
	sin, cos := math.Sincos(Deg2Rad(rotDeg))
	return [6]float64{
		cos * sx, sin * sx,
		-sin * sy, cos * sy,
		tx, ty,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// rotatePoint rotates (x, y) about (cx, cy) by the given angle in degrees.
func rotatePoint(x, y, cx, cy, deg float64) (float64, float64) {
	sin, cos := math.Sincos(Deg2Rad(deg))
	dx, dy := x-cx, y-cy
	return cx + cos*dx - sin*dy, cy + sin*dx + cos*dy
}

// UIScreenPosition resolves a UI entity's screen-space position from its
// nine-point anchor on a canvas of the given size plus its raw position as an
// offset. Non-UI entities never use this path.
func UIScreenPosition(t Transform, canvasW, canvasH float64) Vec2 {
	return t.Anchor.Point(canvasW, canvasH).Add(t.Position)
}
