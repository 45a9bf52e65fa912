package kle

import (
	"cmp"
	"math"
	"slices"
)

// SortKeys orders keys by rotation angle, rotation origin, then y and x.
// The sort is stable.
func SortKeys(keys []Key) {
	slices.SortStableFunc(keys, CompareKeys)
}

// CompareKeys is the canonical key ordering used by the encoder.
func CompareKeys(a, b Key) int {
	return cmp.Or(
		cmp.Compare(normalizeAngle(a.RotationAngle), normalizeAngle(b.RotationAngle)),
		cmp.Compare(a.RotationX, b.RotationX),
		cmp.Compare(a.RotationY, b.RotationY),
		cmp.Compare(a.Y, b.Y),
		cmp.Compare(a.X, b.X),
	)
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
