package qmk

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSavedLayout = errors.New("invalid saved layout")

const (
	DefaultLayers     = 4
	DefaultLabelIndex = 1
	keycodeWidth      = 9
)

// SavedLayout is a keymap exported from VIAL (.vil, "layout") or VIA
// ("layers").
type SavedLayout struct {
	// VIAL: layer, row, column.
	Layout [][][]Keycode `json:"layout"`
	// VIAL: layer, encoder, [ccw, cw].
	EncoderLayout [][][]Keycode `json:"encoder_layout"`
	// VIA: layer, row*cols+column.
	Layers [][]Keycode `json:"layers"`
	// VIA: encoder, layer, [ccw, cw].
	Encoders [][][]Keycode `json:"encoders"`
}

func ParseSavedLayout(data []byte) (*SavedLayout, error) {
	var s SavedLayout
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSavedLayout, err)
	}
	if s.Layout == nil && s.Layers == nil {
		return nil, fmt.Errorf("%w: neither \"layout\" nor \"layers\" present", ErrInvalidSavedLayout)
	}
	return &s, nil
}

type KeymapOptions struct {
	Layers     int
	LabelIndex int
	Saved      *SavedLayout
	// Aliases shortens long keycode names, see ParseKeycodeAliases.
	Aliases map[string]string
	// Conversions replaces deprecated keycodes, see ParseConversions.
	Conversions map[string]string
}

// Keymap renders keymap.c for the canonical layout. Without a saved layout
// the first layer is read from the label slot LabelIndex, falling back to
// the printed legend, and every other layer is transparent.
func Keymap(kbd kle.Keyboard, opts KeymapOptions) (string, error) {
	if opts.Layers <= 0 {
		opts.Layers = DefaultLayers
	}
	if opts.LabelIndex < 0 || opts.LabelIndex >= kle.LabelCount {
		return "", fmt.Errorf("label index %d out of range", opts.LabelIndex)
	}

	encoders, err := EncoderCount(kbd.Keys)
	if err != nil {
		return "", fmt.Errorf("count encoders: %w", err)
	}

	canonical, err := multilayout.ResolveCanonical(kbd)
	if err != nil {
		return "", fmt.Errorf("resolve layout: %w", err)
	}
	keys, err := switchKeys(canonical.Keys)
	if err != nil {
		return "", err
	}
	_, cols, err := MatrixSize(keys)
	if err != nil {
		return "", fmt.Errorf("get matrix size: %w", err)
	}

	var b strings.Builder
	b.WriteString(headerSPDX)
	b.WriteString("#include QMK_KEYBOARD_H\n\nconst uint16_t PROGMEM keymaps[][MATRIX_ROWS][MATRIX_COLS] = {\n\n")

	for layer := 0; layer < opts.Layers; layer++ {
		var cells []string
		currentY := 0.0
		for _, k := range keys {
			kc, err := opts.keycode(k, layer, cols)
			if err != nil {
				return "", err
			}
			if k.Y != currentY {
				currentY = k.Y
				cells = append(cells, "\n\t\t")
			}
			cells = append(cells, fmt.Sprintf("%-*s", keycodeWidth, kc+","))
		}
		if n := len(cells); n > 0 {
			cells[n-1] = strings.TrimRight(strings.TrimSpace(cells[n-1]), ",")
		}
		fmt.Fprintf(&b, "\t[%d] = LAYOUT(\n\t\t%s\n\t),\n\n", layer, strings.Join(cells, ""))
	}
	b.WriteString("};\n")

	if encoders > 0 {
		b.WriteString("\n\n/* `ENCODER_MAP_ENABLE = yes` must be added to the rules.mk at the KEYMAP level. See QMK docs. */\n")
		b.WriteString("/* Remove the following code if you do not enable it in your keymap (e.g. default keymap). */\n")
		b.WriteString("#if defined(ENCODER_MAP_ENABLE)\nconst uint16_t PROGMEM encoder_map[][NUM_ENCODERS][2] = {\n")
		for layer := 0; layer < opts.Layers; layer++ {
			entries := make([]string, encoders)
			for enc := range entries {
				ccw, cw, err := opts.encoderKeycodes(enc, layer)
				if err != nil {
					return "", err
				}
				entries[enc] = fmt.Sprintf("ENCODER_CCW_CW(%s, %s)", ccw, cw)
			}
			fmt.Fprintf(&b, "\t[%d] = { %s },\n", layer, strings.Join(entries, ", "))
		}
		b.WriteString("};\n#endif\n")
	}

	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n"), nil
}

func (o KeymapOptions) keycode(k kle.Key, layer, cols int) (string, error) {
	var kc string
	switch {
	case o.Saved != nil && o.Saved.Layout != nil:
		if layer >= len(o.Saved.Layout) {
			kc = "KC_TRNS"
			break
		}
		pos, err := matrixPosition(k)
		if err != nil {
			return "", err
		}
		rows := o.Saved.Layout[layer]
		if pos.Row >= len(rows) || pos.Col >= len(rows[pos.Row]) {
			return "", fmt.Errorf("%w: no keycode for layer %d at %d,%d", ErrInvalidSavedLayout, layer, pos.Row, pos.Col)
		}
		kc = string(rows[pos.Row][pos.Col])
	case o.Saved != nil:
		if layer >= len(o.Saved.Layers) {
			kc = "KC_TRNS"
			break
		}
		pos, err := matrixPosition(k)
		if err != nil {
			return "", err
		}
		i := pos.Col + pos.Row*cols
		if i >= len(o.Saved.Layers[layer]) {
			return "", fmt.Errorf("%w: no keycode for layer %d at %d,%d", ErrInvalidSavedLayout, layer, pos.Row, pos.Col)
		}
		kc = string(o.Saved.Layers[layer][i])
	case layer > 0:
		kc = "KC_TRNS"
	default:
		kc = k.Labels[o.LabelIndex]
		if kc == "" {
			var ok bool
			if kc, ok = LegendKeycode(k); !ok {
				kc = "KC_TRNS"
			}
		}
	}
	return o.rename(kc), nil
}

func matrixPosition(k kle.Key) (multilayout.Coord, error) {
	pos, ok, err := multilayout.ExtractRowCol(k)
	if err != nil {
		return multilayout.Coord{}, err
	}
	if !ok {
		return multilayout.Coord{}, fmt.Errorf("%w: key at (%g, %g) has no matrix position", ErrInvalidSavedLayout, k.X, k.Y)
	}
	return pos, nil
}

func (o KeymapOptions) encoderKeycodes(enc, layer int) (string, string, error) {
	var pair []Keycode
	switch {
	case o.Saved != nil && o.Saved.EncoderLayout != nil:
		if layer < len(o.Saved.EncoderLayout) && enc < len(o.Saved.EncoderLayout[layer]) {
			pair = o.Saved.EncoderLayout[layer][enc]
		}
	case o.Saved != nil && o.Saved.Encoders != nil:
		if enc < len(o.Saved.Encoders) && layer < len(o.Saved.Encoders[enc]) {
			pair = o.Saved.Encoders[enc][layer]
		}
	}
	if pair == nil {
		return "KC_TRNS", "KC_TRNS", nil
	}
	if len(pair) != 2 {
		return "", "", fmt.Errorf("%w: encoder %d on layer %d needs 2 keycodes, got %d", ErrInvalidSavedLayout, enc, layer, len(pair))
	}
	return o.rename(string(pair[0])), o.rename(string(pair[1])), nil
}

func (o KeymapOptions) rename(kc string) string {
	if c, ok := o.Conversions[kc]; ok {
		kc = c
	}
	if a, ok := o.Aliases[kc]; ok {
		kc = a
	}
	return kc
}
