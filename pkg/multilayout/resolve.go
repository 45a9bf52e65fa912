package multilayout

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"fmt"
	"maps"
	"slices"
)

type offset struct {
	dx, dy float64
}

// resolver works on a private copy of the keys. Variant bounds are taken
// before anything moves, so every offset is computed from the original
// geometry.
type resolver struct {
	keys    []kle.Key
	plain   []int
	groups  map[int][][]int
	bounds  map[Tag]kle.Rect
	offsets map[Tag]offset
	keep    []bool
}

func newResolver(kbd kle.Keyboard) (*resolver, error) {
	keys := kbd.Clone().Keys
	plain, groups, err := partition(keys)
	if err != nil {
		return nil, err
	}
	r := &resolver{
		keys:    keys,
		plain:   plain,
		groups:  groups,
		bounds:  map[Tag]kle.Rect{},
		offsets: map[Tag]offset{},
		keep:    make([]bool, len(keys)),
	}
	for idx, variants := range groups {
		for v, positions := range variants {
			r.bounds[Tag{idx, v}] = kle.Bounds(r.at(positions))
		}
	}
	for _, p := range plain {
		r.keep[p] = true
	}
	return r, nil
}

func (r *resolver) at(positions []int) []kle.Key {
	out := make([]kle.Key, len(positions))
	for i, p := range positions {
		out[i] = r.keys[p]
	}
	return out
}

// variantOffset moves variant t onto the top-left corner of variant 0 of
// the same index.
func (r *resolver) variantOffset(t Tag) offset {
	if t.Value == 0 {
		return offset{}
	}
	if o, ok := r.offsets[t]; ok {
		return o
	}
	base, own := r.bounds[Tag{t.Index, 0}], r.bounds[t]
	o := offset{dx: base.MinX - own.MinX, dy: base.MinY - own.MinY}
	r.offsets[t] = o
	return o
}

func (r *resolver) move(p int, o offset) {
	k := &r.keys[p]
	k.X += o.dx
	k.Y += o.dy
	if k.RotationAngle != 0 {
		k.RotationX -= o.dx
		k.RotationY -= o.dy
	}
}

func (r *resolver) selectVariant(idx, value int) {
	t := Tag{idx, value}
	o := r.variantOffset(t)
	for _, p := range r.groups[idx][value] {
		r.move(p, o)
		r.keep[p] = true
	}
}

// recoverOutliers keeps keys of unselected variants whose matrix position
// the selected variant does not cover, placed relative to the selected
// variant's final position.
func (r *resolver) recoverOutliers(idx, selected int) error {
	covered := map[Coord]bool{}
	for _, p := range r.groups[idx][selected] {
		c, ok, err := ExtractRowCol(r.keys[p])
		if err != nil {
			return err
		}
		if ok {
			covered[c] = true
		}
	}

	sel := r.bounds[Tag{idx, selected}]
	so := r.variantOffset(Tag{idx, selected})
	for v, positions := range r.groups[idx] {
		if v == selected {
			continue
		}
		own := r.bounds[Tag{idx, v}]
		o := offset{dx: sel.MinX + so.dx - own.MinX, dy: sel.MinY + so.dy - own.MinY}
		for _, p := range positions {
			c, ok, err := ExtractRowCol(r.keys[p])
			if err != nil {
				return err
			}
			if !ok || covered[c] {
				continue
			}
			covered[c] = true
			r.move(p, o)
			r.keep[p] = true
		}
	}
	return nil
}

// result collects kept keys in document order, anchors them at the origin
// and applies the canonical sort.
func (r *resolver) result() []kle.Key {
	out := make([]kle.Key, 0, len(r.keys))
	for p, k := range r.keys {
		if r.keep[p] {
			out = append(out, k)
		}
	}
	b := kle.Bounds(out)
	kle.Translate(out, -b.MinX, -b.MinY)
	kle.SortKeys(out)
	return out
}

// ResolveCanonical builds the "layout-all" keyboard: for every multilayout
// index the variant with the most keys is kept, ties going to the lowest
// value. Keys of other variants are dropped unless their matrix position
// would otherwise be lost. VIAL encoder keys are removed. kbd is not modified.
func ResolveCanonical(kbd kle.Keyboard) (kle.Keyboard, error) {
	r, err := newResolver(kbd)
	if err != nil {
		return kle.Keyboard{}, err
	}

	indices := slices.Sorted(maps.Keys(r.groups))
	for _, idx := range indices {
		r.selectVariant(idx, largestVariant(r.groups[idx]))
	}
	for _, idx := range indices {
		if err := r.recoverOutliers(idx, largestVariant(r.groups[idx])); err != nil {
			return kle.Keyboard{}, err
		}
	}

	out := kle.Keyboard{Meta: kbd.Clone().Meta, Keys: r.result()}
	return out, nil
}

// ResolveSelection returns the keys of one concrete layout. selections[i]
// is the chosen value for multilayout index i.
func ResolveSelection(kbd kle.Keyboard, selections []int) ([]kle.Key, error) {
	r, err := newResolver(kbd)
	if err != nil {
		return nil, err
	}

	if len(selections) != len(r.groups) {
		return nil, &SelectionError{
			Index: -1,
			Msg:   fmt.Sprintf("got %d selections for %d multilayout indices", len(selections), len(r.groups)),
		}
	}
	for idx, value := range selections {
		variants, ok := r.groups[idx]
		if !ok {
			return nil, &SelectionError{Index: idx, Value: value, Msg: "no such multilayout index"}
		}
		if value < 0 || value >= len(variants) {
			return nil, &SelectionError{Index: idx, Value: value, Msg: fmt.Sprintf("index has %d variants", len(variants))}
		}
	}

	for idx, value := range selections {
		r.selectVariant(idx, value)
	}
	return r.result(), nil
}

func largestVariant(variants [][]int) int {
	best := 0
	for v, positions := range variants {
		if len(positions) > len(variants[best]) {
			best = v
		}
	}
	return best
}
