package glimmer

// FitRect computes the letterboxed placement of a fixed virtual-resolution
// canvas inside a window: the largest scale-to-fit rectangle preserving the
// virtual aspect ratio, centered, with black bars on the constrained axis.
// Hosts call this on every resize.
func FitRect(windowW, windowH, virtualW, virtualH float64) Rect {
	if windowW <= 0 || windowH <= 0 || virtualW <= 0 || virtualH <= 0 {
		return Rect{}
	}
	scale := windowW / virtualW
	if windowH/virtualH < scale {
		scale = windowH / virtualH
	}
	w := virtualW * scale
	h := virtualH * scale
	return Rect{
		X:      (windowW - w) / 2,
		Y:      (windowH - h) / 2,
		Width:  w,
		Height: h,
	}
}
