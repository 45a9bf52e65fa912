package kle

import "math"

// Rect is an axis-aligned box in key units.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds is the box spanned by the unrotated primary rectangles of keys.
// Rotation is ignored, matching how layout offsets are computed elsewhere.
func Bounds(keys []Key) Rect {
	if len(keys) == 0 {
		return Rect{}
	}
	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, k := range keys {
		r.MinX = min(r.MinX, k.X)
		r.MinY = min(r.MinY, k.Y)
		r.MaxX = max(r.MaxX, k.X+k.Width)
		r.MaxY = max(r.MaxY, k.Y+k.Height)
	}
	return r
}

// Translate moves every key by (dx, dy). Rotated keys move their pivot too
// so they keep their shape relative to the rest of the board.
func Translate(keys []Key, dx, dy float64) {
	for i := range keys {
		keys[i].X += dx
		keys[i].Y += dy
		if keys[i].RotationAngle != 0 {
			keys[i].RotationX += dx
			keys[i].RotationY += dy
		}
	}
}
