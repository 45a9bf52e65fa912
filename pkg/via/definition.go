package via

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"encoding/json"
	"fmt"
)

// Definition is a VIA/VIAL keyboard definition (vial.json).
type Definition struct {
	Name      string  `json:"name,omitempty"`
	VendorID  string  `json:"vendorId,omitempty"`
	ProductID string  `json:"productId,omitempty"`
	Lighting  string  `json:"lighting"`
	Matrix    Matrix  `json:"matrix"`
	Layouts   Layouts `json:"layouts"`
}

type Matrix struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type Layouts struct {
	Labels []multilayout.LayoutLabel `json:"labels,omitempty"`
	Keymap json.RawMessage           `json:"keymap"`
}

type Options struct {
	Name      string
	VendorID  string
	ProductID string
	Lighting  string
}

// BuildDefinition rewrites every key into VIA's annotation scheme: "row,col"
// in the top-left legend, "index,value" in the bottom-right legend for
// multilayout keys, and the encoder marker in the centre. All other labels
// and the keyboard metadata are dropped.
func BuildDefinition(kbd kle.Keyboard, opts Options) (*Definition, error) {
	labels, err := multilayout.Labels(kbd.Keys)
	if err != nil {
		return nil, fmt.Errorf("get layout labels: %w", err)
	}

	out := kle.NewKeyboard()
	out.Keys = make([]kle.Key, 0, len(kbd.Keys))
	for _, k := range kbd.Keys {
		vk, err := annotate(k)
		if err != nil {
			return nil, err
		}
		out.Keys = append(out.Keys, vk)
	}

	rows, cols, err := qmk.MatrixSize(kbd.Keys)
	if err != nil {
		return nil, fmt.Errorf("get matrix size: %w", err)
	}

	keymap, err := kle.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode keymap: %w", err)
	}

	lighting := opts.Lighting
	if lighting == "" {
		lighting = "none"
	}
	name := opts.Name
	if name == "" {
		name = kbd.Meta.Name
	}

	return &Definition{
		Name:      name,
		VendorID:  opts.VendorID,
		ProductID: opts.ProductID,
		Lighting:  lighting,
		Matrix:    Matrix{Rows: rows, Cols: cols},
		Layouts:   Layouts{Labels: labels, Keymap: keymap},
	}, nil
}

func annotate(k kle.Key) (kle.Key, error) {
	pos, ok, err := multilayout.ExtractRowCol(k)
	if err != nil {
		return kle.Key{}, err
	}
	if !ok && !k.IsEncoder() {
		return kle.Key{}, fmt.Errorf("key at (%g, %g) has no matrix position", k.X, k.Y)
	}

	vk := k
	vk.Labels = [kle.LabelCount]string{}
	vk.TextSize = [kle.LabelCount]int{}
	vk.TextColor = [kle.LabelCount]string{}
	if k.IsEncoder() {
		vk.Labels[kle.SlotEncoder] = k.Labels[kle.SlotEncoder]
	}
	if ok {
		vk.Labels[kle.SlotLabel] = fmt.Sprintf("%d,%d", pos.Row, pos.Col)
	}

	tag, ok, err := multilayout.ExtractTag(k)
	if err != nil {
		return kle.Key{}, err
	}
	if ok {
		vk.Labels[kle.SlotLayoutTag] = fmt.Sprintf("%d,%d", tag.Index, tag.Value)
	}
	return vk, nil
}
