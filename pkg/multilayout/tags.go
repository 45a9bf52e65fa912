package multilayout

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"strconv"
	"strings"
)

// Coord is a position in the switch matrix.
type Coord struct {
	Row int
	Col int
}

// Tag places a key in one variant of one multilayout option.
type Tag struct {
	Index int
	Value int
}

// ExtractRowCol reads the matrix position from slots 9 and 11. ok is false
// when neither slot is populated.
func ExtractRowCol(key kle.Key) (Coord, bool, error) {
	row, col, ok, err := labelPair(key, kle.SlotRow, "row", kle.SlotColumn, "column")
	return Coord{Row: row, Col: col}, ok, err
}

// ExtractTag reads the multilayout index and value from slots 3 and 5. ok
// is false when neither slot is populated.
func ExtractTag(key kle.Key) (Tag, bool, error) {
	idx, val, ok, err := labelPair(key, kle.SlotLayoutIndex, "multilayout index", kle.SlotLayoutValue, "multilayout value")
	return Tag{Index: idx, Value: val}, ok, err
}

// IsTagged reports whether the key claims membership of a multilayout.
func IsTagged(key kle.Key) bool {
	return key.Labels[kle.SlotLayoutIndex] != "" || key.Labels[kle.SlotLayoutValue] != ""
}

func labelPair(key kle.Key, slotA int, nameA string, slotB int, nameB string) (int, int, bool, error) {
	la, lb := key.Labels[slotA], key.Labels[slotB]
	if la == "" && lb == "" {
		return 0, 0, false, nil
	}
	a, aok := parseLabel(la)
	b, bok := parseLabel(lb)
	switch {
	case aok && bok:
		return a, b, true, nil
	case aok:
		return 0, 0, false, &LabelError{X: key.X, Y: key.Y, Label: nameB, Other: nameA, Value: la}
	default:
		return 0, 0, false, &LabelError{X: key.X, Y: key.Y, Label: nameA, Other: nameB, Value: lb}
	}
}

func parseLabel(s string) (int, bool) {
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
