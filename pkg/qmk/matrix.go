package qmk

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"fmt"
	"strconv"
)

// MatrixSize returns the row and column count spanned by the matrix
// positions of keys. VIAL encoders and keys without a position are ignored.
func MatrixSize(keys []kle.Key) (rows, cols int, err error) {
	for _, k := range keys {
		if k.IsVIALEncoder() {
			continue
		}
		c, ok, err := multilayout.ExtractRowCol(k)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			continue
		}
		rows = max(rows, c.Row+1)
		cols = max(cols, c.Col+1)
	}
	return rows, cols, nil
}

// EncoderIndex returns the encoder number of an encoder key. VIAL encoders
// ("e") keep it in the row slot, VIA encoders append it to the marker.
func EncoderIndex(k kle.Key) (int, bool, error) {
	if !k.IsEncoder() {
		return 0, false, nil
	}
	src := k.Labels[kle.SlotEncoder][1:]
	if k.IsVIALEncoder() {
		src = k.Labels[kle.SlotRow]
	}
	n, err := strconv.Atoi(src)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("encoder key at (%g, %g) has invalid index %q", k.X, k.Y, src)
	}
	return n, true, nil
}

// switchKeys drops encoder keys that have no switch in the matrix.
func switchKeys(keys []kle.Key) ([]kle.Key, error) {
	out := make([]kle.Key, 0, len(keys))
	for _, k := range keys {
		if k.IsEncoder() {
			_, ok, err := multilayout.ExtractRowCol(k)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, k)
	}
	return out, nil
}

// EncoderCount is the highest encoder index plus one.
func EncoderCount(keys []kle.Key) (int, error) {
	count := 0
	for _, k := range keys {
		n, ok, err := EncoderIndex(k)
		if err != nil {
			return 0, err
		}
		if ok {
			count = max(count, n+1)
		}
	}
	return count, nil
}
