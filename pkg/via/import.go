package via

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Import turns a VIA definition back into an annotated layout: matrix
// positions go to the row/column slots, "index,value" pairs to the
// multilayout slots. Layout names are placed on the widest key of each
// index, option names on the first key of each value.
func Import(data []byte) (kle.Keyboard, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return kle.Keyboard{}, fmt.Errorf("decode definition: %w", err)
	}
	if len(def.Layouts.Keymap) == 0 {
		return kle.Keyboard{}, fmt.Errorf("definition has no layouts.keymap")
	}
	kbd, err := kle.Decode(def.Layouts.Keymap)
	if err != nil {
		return kle.Keyboard{}, fmt.Errorf("decode keymap: %w", err)
	}

	type pair struct{ a, b int }
	parse := func(s string) (pair, bool, error) {
		if s == "" {
			return pair{}, false, nil
		}
		as, bs, found := strings.Cut(s, ",")
		if !found {
			return pair{}, false, nil
		}
		a, err := strconv.Atoi(strings.TrimSpace(as))
		if err != nil {
			return pair{}, false, fmt.Errorf("parse %q: %w", s, err)
		}
		b, err := strconv.Atoi(strings.TrimSpace(bs))
		if err != nil {
			return pair{}, false, fmt.Errorf("parse %q: %w", s, err)
		}
		return pair{a, b}, true, nil
	}

	widest := map[int]float64{}
	for _, k := range kbd.Keys {
		ml, ok, err := parse(k.Labels[kle.SlotLayoutTag])
		if err != nil {
			return kle.Keyboard{}, err
		}
		if ok {
			widest[ml.a] = max(widest[ml.a], k.Width)
		}
	}

	namePlaced := map[int]bool{}
	optionPlaced := map[[2]int]bool{}
	for i := range kbd.Keys {
		k := &kbd.Keys[i]
		rc, rcOK, err := parse(k.Labels[kle.SlotLabel])
		if err != nil {
			return kle.Keyboard{}, err
		}
		ml, mlOK, err := parse(k.Labels[kle.SlotLayoutTag])
		if err != nil {
			return kle.Keyboard{}, err
		}
		encoder := ""
		if k.IsEncoder() {
			encoder = k.Labels[kle.SlotEncoder]
		}

		k.Labels = [kle.LabelCount]string{}
		k.Labels[kle.SlotEncoder] = encoder
		if rcOK {
			k.Labels[kle.SlotRow] = strconv.Itoa(rc.a)
			k.Labels[kle.SlotColumn] = strconv.Itoa(rc.b)
		}
		if !mlOK {
			continue
		}
		k.Labels[kle.SlotLayoutIndex] = strconv.Itoa(ml.a)
		k.Labels[kle.SlotLayoutValue] = strconv.Itoa(ml.b)

		if ml.a < 0 || ml.a >= len(def.Layouts.Labels) {
			continue
		}
		label := def.Layouts.Labels[ml.a]
		if !namePlaced[ml.a] && k.Width == widest[ml.a] {
			k.Labels[kle.SlotLayoutName] = label.Name
			namePlaced[ml.a] = true
		}
		if ml.b >= 0 && ml.b < len(label.Options) && !optionPlaced[[2]int{ml.a, ml.b}] {
			k.Labels[kle.SlotLayoutOption] = label.Options[ml.b]
			optionPlaced[[2]int{ml.a, ml.b}] = true
		}
	}

	kbd.Meta.Name = def.Name
	return kbd, nil
}
