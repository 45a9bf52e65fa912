package multilayout

import (
	"fmt"
	"strings"
)

// LabelError is returned when a key has only one half of a label pair
// (row/column or multilayout index/value), or a half that is not a
// non-negative integer.
type LabelError struct {
	X, Y float64
	// Label names the missing or malformed half.
	Label string
	// Other names the half that was found.
	Other string
	Value string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("key at (%g, %g) has a %s of %q but is missing a valid %s", e.X, e.Y, e.Other, e.Value, e.Label)
}

// InvalidMultilayoutError is returned when the variant values of an index
// do not run 0, 1, ..., n-1 with n >= 2.
type InvalidMultilayoutError struct {
	Index  int
	Values []int
}

func (e *InvalidMultilayoutError) Error() string {
	vals := make([]string, len(e.Values))
	for i, v := range e.Values {
		vals[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("multilayout index %d is not a complete multilayout, it only has values [%s]; values must start from 0 and increase consecutively",
		e.Index, strings.Join(vals, ", "))
}

// MissingMultilayoutNameError is returned when a layout option has no
// display name. Value is -1 for the primary name of an index.
type MissingMultilayoutNameError struct {
	Index int
	Value int
}

func (e *MissingMultilayoutNameError) Error() string {
	if e.Value < 0 {
		return fmt.Sprintf("multilayout index %d is missing a multilayout name", e.Index)
	}
	return fmt.Sprintf("multilayout index %d, value %d is missing a secondary multilayout name", e.Index, e.Value)
}

// SelectionError is returned by ResolveSelection for a malformed selection
// list. Index is -1 when the list length itself is wrong.
type SelectionError struct {
	Index int
	Value int
	Msg   string
}

func (e *SelectionError) Error() string {
	if e.Index < 0 {
		return "invalid layout selection: " + e.Msg
	}
	return fmt.Sprintf("invalid layout selection %d for multilayout index %d: %s", e.Value, e.Index, e.Msg)
}
