package multilayout

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type keySpec struct {
	x, y, w  float64
	row, col string
	idx, val string
	name     string
}

func mkKey(s keySpec) kle.Key {
	k := kle.NewKey()
	k.X, k.Y = s.x, s.y
	if s.w != 0 {
		k.Width, k.Width2 = s.w, s.w
	}
	k.Labels[kle.SlotRow] = s.row
	k.Labels[kle.SlotColumn] = s.col
	k.Labels[kle.SlotLayoutIndex] = s.idx
	k.Labels[kle.SlotLayoutValue] = s.val
	k.Labels[kle.SlotLayoutName] = s.name
	return k
}

func board(specs ...keySpec) kle.Keyboard {
	kbd := kle.NewKeyboard()
	for _, s := range specs {
		kbd.Keys = append(kbd.Keys, mkKey(s))
	}
	return kbd
}

func minXY(keys []kle.Key) (float64, float64) {
	b := kle.Bounds(keys)
	return b.MinX, b.MinY
}

func TestExtractRowCol(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		col     string
		want    Coord
		ok      bool
		wantErr string
	}{
		{name: "both", row: "2", col: "13", want: Coord{2, 13}, ok: true},
		{name: "neither"},
		{name: "row only", row: "1", wantErr: "column"},
		{name: "col only", col: "1", wantErr: "row"},
		{name: "non numeric", row: "a", col: "1", wantErr: "row"},
		{name: "negative", row: "-1", col: "1", wantErr: "row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ExtractRowCol(mkKey(keySpec{row: tt.row, col: tt.col}))
			if tt.wantErr != "" {
				var le *LabelError
				require.ErrorAs(t, err, &le)
				assert.Equal(t, tt.wantErr, le.Label)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTag(t *testing.T) {
	tag, ok, err := ExtractTag(mkKey(keySpec{idx: "1", val: "2"}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Tag{Index: 1, Value: 2}, tag)

	_, ok, err = ExtractTag(mkKey(keySpec{}))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ExtractTag(mkKey(keySpec{idx: "1"}))
	var le *LabelError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "multilayout value", le.Label)
	assert.Contains(t, err.Error(), "multilayout index")
}

func TestGroupByMultilayout(t *testing.T) {
	kbd := board(
		keySpec{row: "0", col: "0"},
		keySpec{row: "0", col: "1", idx: "0", val: "0"},
		keySpec{row: "0", col: "1", idx: "0", val: "1"},
		keySpec{row: "0", col: "2", idx: "0", val: "1"},
		keySpec{row: "1", col: "0", idx: "1", val: "0"},
		keySpec{row: "1", col: "0", idx: "1", val: "1"},
	)
	enc := kle.NewKey()
	enc.Labels[kle.SlotEncoder] = "e"
	enc.Labels[kle.SlotLayoutIndex] = "0"
	enc.Labels[kle.SlotLayoutValue] = "3"
	kbd.Keys = append(kbd.Keys, enc)

	groups, err := GroupByMultilayout(kbd.Keys)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, groups.Indices())
	require.Len(t, groups[0], 2)
	assert.Len(t, groups[0][0], 1)
	assert.Len(t, groups[0][1], 2)
	assert.Equal(t, "2", groups[0][1][1].Labels[kle.SlotColumn])
}

func TestGroupValidation(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []int
	}{
		{"gap", []string{"0", "2"}, []int{0, 2}},
		{"single variant", []string{"0", "0"}, []int{0}},
		{"no zero", []string{"1", "2"}, []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var specs []keySpec
			for i, v := range tt.values {
				specs = append(specs, keySpec{x: float64(i), row: "0", col: "0", idx: "0", val: v})
			}
			_, err := GroupByMultilayout(board(specs...).Keys)
			var ie *InvalidMultilayoutError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, 0, ie.Index)
			assert.Equal(t, tt.want, ie.Values)
		})
	}
}

func TestResolveCanonicalScenario(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 0, row: "0", col: "0", idx: "0", val: "0"},
		keySpec{x: 1, y: 0, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 0.5, y: 0, w: 1.5, row: "0", col: "0", idx: "0", val: "1"},
	)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 2)
	assert.Equal(t, 0.0, out.Keys[0].X)
	assert.Equal(t, 1.0, out.Keys[1].X)
	for _, k := range out.Keys {
		assert.Equal(t, "0", k.Labels[kle.SlotLayoutValue])
		assert.Equal(t, 1.0, k.Width)
	}
}

func TestResolveCanonicalPicksLargest(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 0, w: 2, row: "0", col: "0"},
		keySpec{x: 2, y: 0, w: 2, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 2, y: 2, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 3, y: 2, row: "0", col: "2", idx: "0", val: "1"},
	)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 3)

	// variant 1 moves up onto variant 0's position
	assert.Equal(t, [2]float64{2, 0}, [2]float64{out.Keys[1].X, out.Keys[1].Y})
	assert.Equal(t, [2]float64{3, 0}, [2]float64{out.Keys[2].X, out.Keys[2].Y})
	assert.Equal(t, "1", out.Keys[1].Labels[kle.SlotLayoutValue])
}

func TestResolveCanonicalTieBreak(t *testing.T) {
	// variant 1 comes first in document order, variant 0 must still win
	kbd := board(
		keySpec{x: 0, y: 2, row: "0", col: "0", idx: "0", val: "1"},
		keySpec{x: 0, y: 0, row: "0", col: "0", idx: "0", val: "0"},
		keySpec{x: 1, y: 0, row: "0", col: "1"},
	)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 2)
	assert.Equal(t, "0", out.Keys[0].Labels[kle.SlotLayoutValue])
}

func TestResolveCanonicalOutliers(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 4, w: 3.75, row: "4", col: "0"},
		// full spacebar on its own column
		keySpec{x: 3.75, y: 4, w: 6.25, row: "4", col: "6", idx: "0", val: "0"},
		// split spacebar drawn below the board
		keySpec{x: 3.75, y: 6, w: 2.25, row: "4", col: "4", idx: "0", val: "1"},
		keySpec{x: 6, y: 6, w: 2.25, row: "4", col: "5", idx: "0", val: "1"},
		keySpec{x: 8.25, y: 6, w: 1.75, row: "4", col: "7", idx: "0", val: "1"},
	)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 5)

	cols := map[string]kle.Key{}
	for _, k := range out.Keys {
		cols[k.Labels[kle.SlotColumn]] = k
		assert.Equal(t, 0.0, k.Y)
	}
	require.Contains(t, cols, "6", "full spacebar position must be recovered")
	assert.Equal(t, 3.75, cols["6"].X)
	assert.Equal(t, 3.75, cols["4"].X)
	assert.Equal(t, 8.25, cols["7"].X)
}

func TestResolveEncoderKeys(t *testing.T) {
	kbd := board(keySpec{row: "0", col: "0"}, keySpec{x: 1, row: "0", col: "1"})
	vial := kle.NewKey()
	vial.X = 2
	vial.Labels[kle.SlotEncoder] = "e"
	vial.Labels[kle.SlotRow] = "0"
	via := kle.NewKey()
	via.X = 3
	via.Labels[kle.SlotEncoder] = "e0"
	via.Labels[kle.SlotRow] = "0"
	via.Labels[kle.SlotColumn] = "2"
	kbd.Keys = append(kbd.Keys, vial, via)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 3)
	assert.Equal(t, "e0", out.Keys[2].Labels[kle.SlotEncoder])
	assert.Equal(t, 3.0, out.Keys[2].X)

	keys, err := ResolveSelection(kbd, nil)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "e0", keys[2].Labels[kle.SlotEncoder])
}

func TestResolveSkipsTaggedEncoders(t *testing.T) {
	kbd := board(
		keySpec{row: "0", col: "0", idx: "0", val: "0"},
		keySpec{x: 1, row: "0", col: "0", idx: "0", val: "1"},
	)
	enc := mkKey(keySpec{x: 2, row: "0", col: "1", idx: "0", val: "1"})
	enc.Labels[kle.SlotEncoder] = "e1"
	kbd.Keys = append(kbd.Keys, enc)

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	require.Len(t, out.Keys, 1)
	assert.Empty(t, out.Keys[0].Labels[kle.SlotEncoder])
}

func TestResolveBoundingBox(t *testing.T) {
	kbd := board(
		keySpec{x: 2, y: 3, row: "0", col: "0"},
		keySpec{x: 3, y: 3, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 5, y: 7, w: 2, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 4, y: 4, row: "1", col: "0", idx: "1", val: "0"},
		keySpec{x: 9, y: 9, row: "1", col: "0", idx: "1", val: "1"},
	)
	kbd.Keys[0].RotationAngle = 10
	kbd.Keys[0].RotationX = 2
	kbd.Keys[0].RotationY = 3

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	x, y := minXY(out.Keys)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	for _, sel := range [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		keys, err := ResolveSelection(kbd, sel)
		require.NoError(t, err)
		require.Len(t, keys, 3)
		x, y := minXY(keys)
		assert.Equal(t, 0.0, x, "selection %v", sel)
		assert.Equal(t, 0.0, y, "selection %v", sel)
	}
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	kbd := board(
		keySpec{x: 2, y: 3, row: "0", col: "0"},
		keySpec{x: 5, y: 7, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 8, y: 7, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 9, y: 7, row: "0", col: "2", idx: "0", val: "1"},
	)
	before := kbd.Clone()

	_, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	_, err = ResolveSelection(kbd, []int{1})
	require.NoError(t, err)
	assert.Equal(t, before, kbd)
}

func TestResolveIdempotent(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 0, w: 1.5, row: "0", col: "0"},
		keySpec{x: 1.5, y: 0, w: 2, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 1.5, y: 2, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 2.5, y: 2, row: "0", col: "2", idx: "0", val: "1"},
		keySpec{x: 0, y: 1, w: 2.25, row: "1", col: "0"},
	)

	once, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	for i := range once.Keys {
		once.Keys[i].Labels[kle.SlotLayoutIndex] = ""
		once.Keys[i].Labels[kle.SlotLayoutValue] = ""
	}
	twice, err := ResolveCanonical(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestResolveSelection(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 0, row: "0", col: "0"},
		keySpec{x: 1, y: 0, w: 2, row: "0", col: "1", idx: "0", val: "0"},
		keySpec{x: 1, y: 2, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 2, y: 2, row: "0", col: "2", idx: "0", val: "1"},
		keySpec{x: 0, y: 1, w: 2, row: "1", col: "0", idx: "1", val: "0"},
		keySpec{x: 0, y: 3, row: "1", col: "0", idx: "1", val: "1"},
		keySpec{x: 1, y: 3, row: "1", col: "1", idx: "1", val: "1"},
	)

	keys, err := ResolveSelection(kbd, []int{0, 1})
	require.NoError(t, err)
	require.Len(t, keys, 4)
	assert.Equal(t, [2]float64{0, 1}, [2]float64{keys[2].X, keys[2].Y})
	assert.Equal(t, [2]float64{1, 1}, [2]float64{keys[3].X, keys[3].Y})
	assert.Equal(t, 2.0, keys[1].Width)
}

func TestResolveSelectionErrors(t *testing.T) {
	kbd := board(
		keySpec{row: "0", col: "0", idx: "0", val: "0"},
		keySpec{row: "0", col: "0", idx: "0", val: "1"},
		keySpec{row: "1", col: "0", idx: "1", val: "0"},
		keySpec{row: "1", col: "0", idx: "1", val: "1"},
	)
	gapped := board(
		keySpec{row: "0", col: "0", idx: "0", val: "0"},
		keySpec{row: "0", col: "0", idx: "0", val: "1"},
		keySpec{row: "1", col: "0", idx: "2", val: "0"},
		keySpec{row: "1", col: "0", idx: "2", val: "1"},
	)

	tests := []struct {
		name string
		kbd  kle.Keyboard
		sel  []int
	}{
		{"out of range", kbd, []int{0, 5}},
		{"negative", kbd, []int{-1, 0}},
		{"too short", kbd, []int{0}},
		{"too long", kbd, []int{0, 0, 0}},
		{"missing index", gapped, []int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSelection(tt.kbd, tt.sel)
			var se *SelectionError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestResolvePropagatesLabelErrors(t *testing.T) {
	kbd := board(
		keySpec{row: "0", col: "0", idx: "0"},
	)
	_, err := ResolveCanonical(kbd)
	var le *LabelError
	assert.ErrorAs(t, err, &le)
}

func TestRotatedVariantPivot(t *testing.T) {
	kbd := board(
		keySpec{x: 0, y: 0, row: "0", col: "0", idx: "0", val: "0"},
		keySpec{x: 0, y: 3, row: "0", col: "0", idx: "0", val: "1"},
		keySpec{x: 1, y: 3, row: "0", col: "1", idx: "0", val: "1"},
		keySpec{x: 4, y: 0, row: "1", col: "0"},
	)
	kbd.Keys[2].RotationAngle = 15
	kbd.Keys[2].RotationX = 1
	kbd.Keys[2].RotationY = 3

	out, err := ResolveCanonical(kbd)
	require.NoError(t, err)
	var rotated kle.Key
	for _, k := range out.Keys {
		if k.RotationAngle != 0 {
			rotated = k
		}
	}
	assert.Equal(t, 0.0, rotated.Y)
	assert.Equal(t, 6.0, rotated.RotationY)
}

func TestResolveReanchorsPivots(t *testing.T) {
	kbd := board(
		keySpec{x: 1, y: 1, row: "0", col: "0"},
		keySpec{x: 3, y: 2, row: "0", col: "1"},
	)
	kbd.Keys[1].RotationAngle = 10
	kbd.Keys[1].RotationX = 3
	kbd.Keys[1].RotationY = 2

	keys, err := ResolveSelection(kbd, nil)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, 2.0, keys[1].X)
	assert.Equal(t, 1.0, keys[1].Y)
	assert.Equal(t, 2.0, keys[1].RotationX)
	assert.Equal(t, 1.0, keys[1].RotationY)
}
