package multilayout

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"encoding/json"
	"fmt"
	"strings"
)

// LayoutLabel describes one multilayout index for VIA. An index with two
// variants is a toggle and only has a Name; larger indices list one option
// name per variant.
type LayoutLabel struct {
	Name    string
	Options []string
}

func (l LayoutLabel) MarshalJSON() ([]byte, error) {
	if len(l.Options) == 0 {
		return json.Marshal(l.Name)
	}
	return json.Marshal(append([]string{l.Name}, l.Options...))
}

func (l *LayoutLabel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*l = LayoutLabel{Name: name}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("layout label is neither a string nor a list: %w", err)
	}
	if len(list) == 0 {
		return fmt.Errorf("empty layout label list")
	}
	*l = LayoutLabel{Name: list[0], Options: list[1:]}
	return nil
}

// Labels collects the layout names from slot 7 (primary) and slot 6
// (option) of the tagged keys. The first non-empty name found in document
// order wins.
func Labels(keys []kle.Key) ([]LayoutLabel, error) {
	groups, err := GroupByMultilayout(keys)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	indices := groups.Indices()
	out := make([]LayoutLabel, indices[len(indices)-1]+1)

	for _, idx := range indices {
		variants := groups[idx]
		label := LayoutLabel{}
		if len(variants) > 2 {
			label.Options = make([]string, len(variants))
		}
		for _, k := range keysInOrder(keys, idx) {
			tag, _, _ := ExtractTag(k)
			if label.Name == "" {
				label.Name = k.Labels[kle.SlotLayoutName]
			}
			if label.Options != nil && label.Options[tag.Value] == "" {
				label.Options[tag.Value] = k.Labels[kle.SlotLayoutOption]
			}
		}
		out[idx] = label
	}

	for idx, label := range out {
		if label.Name == "" {
			return nil, &MissingMultilayoutNameError{Index: idx, Value: -1}
		}
		for v, name := range label.Options {
			if name == "" {
				return nil, &MissingMultilayoutNameError{Index: idx, Value: v}
			}
		}
	}
	return out, nil
}

func keysInOrder(keys []kle.Key, idx int) []kle.Key {
	var out []kle.Key
	for _, k := range keys {
		if k.IsEncoder() || !IsTagged(k) {
			continue
		}
		if tag, _, err := ExtractTag(k); err == nil && tag.Index == idx {
			out = append(out, k)
		}
	}
	return out
}

// Alternate is a named explicit selection, rendered as an extra layout next
// to the canonical one.
type Alternate struct {
	Name       string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Selections []int  `json:"selections" yaml:"selections" toml:"selections" validate:"dive,min=0"`
}

// Resolved is an alternate layout after resolution.
type Resolved struct {
	Name string
	Keys []kle.Key
}

// LayoutName lower-cases name and joins its words with underscores.
func LayoutName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// AlternateLayouts resolves every alternate in order.
func AlternateLayouts(kbd kle.Keyboard, alts []Alternate) ([]Resolved, error) {
	seen := map[string]bool{}
	out := make([]Resolved, 0, len(alts))
	for _, alt := range alts {
		name := LayoutName(alt.Name)
		if name == "" {
			return nil, fmt.Errorf("alternate layout has an empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate alternate layout %q", name)
		}
		seen[name] = true

		keys, err := ResolveSelection(kbd, alt.Selections)
		if err != nil {
			return nil, fmt.Errorf("resolve layout %q: %w", name, err)
		}
		out = append(out, Resolved{Name: name, Keys: keys})
	}
	return out, nil
}
