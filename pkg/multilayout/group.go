package multilayout

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"maps"
	"slices"
)

// Groups maps a multilayout index to its variants. Variants are indexed by
// value and hold keys in document order.
type Groups map[int][][]kle.Key

// Indices returns the multilayout indices in ascending order.
func (g Groups) Indices() []int {
	return slices.Sorted(maps.Keys(g))
}

// GroupByMultilayout partitions the tagged keys of keys by index and value.
// Encoder keys are left out.
func GroupByMultilayout(keys []kle.Key) (Groups, error) {
	_, groups, err := partition(keys)
	if err != nil {
		return nil, err
	}
	out := make(Groups, len(groups))
	for idx, variants := range groups {
		vs := make([][]kle.Key, len(variants))
		for v, positions := range variants {
			for _, p := range positions {
				vs[v] = append(vs[v], keys[p])
			}
		}
		out[idx] = vs
	}
	return out, nil
}

// partition splits keys into untagged positions and, per index, the
// positions of each variant. Encoder keys never join a variant. VIAL
// encoders ("e") are dropped entirely since their row slot holds the encoder
// number, while untagged VIA encoders ("e<n>") stay with the plain keys.
func partition(keys []kle.Key) ([]int, map[int][][]int, error) {
	var plain []int
	raw := map[int]map[int][]int{}

	for i, k := range keys {
		if k.IsVIALEncoder() {
			continue
		}
		if !IsTagged(k) {
			plain = append(plain, i)
			continue
		}
		if k.IsEncoder() {
			continue
		}
		tag, _, err := ExtractTag(k)
		if err != nil {
			return nil, nil, err
		}
		if raw[tag.Index] == nil {
			raw[tag.Index] = map[int][]int{}
		}
		raw[tag.Index][tag.Value] = append(raw[tag.Index][tag.Value], i)
	}

	groups := make(map[int][][]int, len(raw))
	for _, idx := range slices.Sorted(maps.Keys(raw)) {
		values := slices.Sorted(maps.Keys(raw[idx]))
		if !consecutive(values) {
			return nil, nil, &InvalidMultilayoutError{Index: idx, Values: values}
		}
		variants := make([][]int, len(values))
		for v, positions := range raw[idx] {
			variants[v] = positions
		}
		groups[idx] = variants
	}
	return plain, groups, nil
}

func consecutive(sorted []int) bool {
	if len(sorted) < 2 {
		return false
	}
	for i, v := range sorted {
		if v != i {
			return false
		}
	}
	return true
}
