package kle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// decodeState is the running context while walking a compact document. The
// key field is the template the next emitted key is stamped from.
type decodeState struct {
	key      Key
	clusterX float64
	clusterY float64
	align    int
	colors   [LabelCount]string
	sizes    [LabelCount]int
	width2   bool
	height2  bool
}

func newDecodeState() decodeState {
	st := decodeState{key: NewKey(), align: DefaultAlignment}
	st.colors[0] = DefaultTextColor
	return st
}

// Decode expands a compact KLE document into a Keyboard.
func Decode(data []byte) (Keyboard, error) {
	if firstToken(data) != '[' {
		return Keyboard{}, formatErr(-1, -1, "document is not an array")
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return Keyboard{}, &FormatError{Row: -1, Item: -1, Msg: "decode document", Err: err}
	}
	return DecodeRows(rows)
}

// DecodeRows expands an already split document. Element 0 may be the
// metadata object, every other element must be a row array.
func DecodeRows(rows []json.RawMessage) (Keyboard, error) {
	kbd := NewKeyboard()
	st := newDecodeState()

	for r, raw := range rows {
		switch firstToken(raw) {
		case '{':
			if r != 0 {
				return Keyboard{}, formatErr(r, -1, "keyboard metadata must be the first element")
			}
			meta, err := decodeMetadata(raw)
			if err != nil {
				return Keyboard{}, &FormatError{Row: r, Item: -1, Msg: "decode metadata", Err: err}
			}
			kbd.Meta = meta
			continue
		case '[':
		default:
			return Keyboard{}, formatErr(r, -1, "expected a row array or a metadata object")
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Keyboard{}, &FormatError{Row: r, Item: -1, Msg: "decode row", Err: err}
		}
		for i, item := range items {
			var err error
			switch firstToken(item) {
			case '"':
				var labels string
				if err = json.Unmarshal(item, &labels); err != nil {
					return Keyboard{}, &FormatError{Row: r, Item: i, Msg: "decode labels", Err: err}
				}
				var key Key
				if st, key, err = st.emit(labels); err != nil {
					return Keyboard{}, &FormatError{Row: r, Item: i, Msg: "decode key", Err: err}
				}
				kbd.Keys = append(kbd.Keys, key)
			case '{':
				var p props
				if err = json.Unmarshal(item, &p); err != nil {
					return Keyboard{}, &FormatError{Row: r, Item: i, Msg: "decode properties", Err: err}
				}
				if p.rotates() && i != 0 {
					return Keyboard{}, formatErr(r, i, "'r', 'rx' and 'ry' may only be used on the first key in a row")
				}
				if st, err = st.apply(p); err != nil {
					return Keyboard{}, &FormatError{Row: r, Item: i, Msg: "decode properties", Err: err}
				}
			default:
				return Keyboard{}, formatErr(r, i, "expected a label string or a property object")
			}
		}
		st = st.endRow()
	}
	return kbd, nil
}

func decodeMetadata(raw json.RawMessage) (Metadata, error) {
	var mp metaProps
	if err := json.Unmarshal(raw, &mp); err != nil {
		return Metadata{}, err
	}
	m := NewMetadata()
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.Author, mp.Author)
	set(&m.Backcolor, mp.Backcolor)
	set(&m.Name, mp.Name)
	set(&m.Notes, mp.Notes)
	set(&m.Radii, mp.Radii)
	set(&m.SwitchBrand, mp.SwitchBrand)
	set(&m.SwitchMount, mp.SwitchMount)
	set(&m.SwitchType, mp.SwitchType)
	m.Background = mp.Background
	return m, nil
}

// apply folds one property object into the running state.
func (st decodeState) apply(p props) (decodeState, error) {
	k := &st.key

	if p.R != nil {
		k.RotationAngle = *p.R
	}
	if p.RX != nil {
		st.clusterX = *p.RX
		k.RotationX = *p.RX
	}
	if p.RY != nil {
		st.clusterY = *p.RY
		k.RotationY = *p.RY
	}
	if p.RX != nil || p.RY != nil {
		k.X = st.clusterX
		k.Y = st.clusterY
	}

	if p.A != nil {
		if !validAlignment(*p.A) {
			return st, fmt.Errorf("alignment %d out of range", *p.A)
		}
		st.align = *p.A
	}
	if p.F != nil {
		k.Default.TextSize = *p.F
		st.sizes = [LabelCount]int{}
	}
	if p.F2 != nil {
		st.sizes = [LabelCount]int{}
		for i := 1; i < LabelCount; i++ {
			st.sizes[i] = *p.F2
		}
	}
	if p.FA != nil {
		if len(p.FA) > LabelCount {
			return st, fmt.Errorf("fa has %d entries, at most %d allowed", len(p.FA), LabelCount)
		}
		st.sizes = [LabelCount]int{}
		copy(st.sizes[:], p.FA)
	}

	if p.P != nil {
		k.Profile = *p.P
	}
	if p.C != nil {
		k.Color = *p.C
	}
	if p.T != nil {
		parts := strings.Split(*p.T, "\n")
		if len(parts) > LabelCount {
			return st, fmt.Errorf("t has %d entries, at most %d allowed", len(parts), LabelCount)
		}
		if parts[0] != "" {
			k.Default.TextColor = parts[0]
		}
		st.colors = [LabelCount]string{}
		copy(st.colors[:], parts)
	}

	if p.X != nil {
		k.X += *p.X
	}
	if p.Y != nil {
		k.Y += *p.Y
	}
	if p.W != nil {
		k.Width = *p.W
	}
	if p.H != nil {
		k.Height = *p.H
	}
	if p.X2 != nil {
		k.X2 = *p.X2
	}
	if p.Y2 != nil {
		k.Y2 = *p.Y2
	}
	if p.W2 != nil {
		k.Width2 = *p.W2
		st.width2 = true
	}
	if p.H2 != nil {
		k.Height2 = *p.H2
		st.height2 = true
	}

	if p.N != nil {
		k.Nub = *p.N
	}
	if p.L != nil {
		k.Stepped = *p.L
	}
	if p.D != nil {
		k.Decal = *p.D
	}
	if p.G != nil {
		k.Ghost = *p.G
	}
	if p.SM != nil {
		k.SwitchMount = *p.SM
	}
	if p.SB != nil {
		k.SwitchBrand = *p.SB
	}
	if p.ST != nil {
		k.SwitchType = *p.ST
	}
	return st, nil
}

// emit stamps a key from the template and advances the cursor past it.
func (st decodeState) emit(labelText string) (decodeState, Key, error) {
	parts := strings.Split(labelText, "\n")
	if len(parts) > LabelCount {
		return st, Key{}, fmt.Errorf("%d labels, at most %d allowed", len(parts), LabelCount)
	}

	key := st.key
	key.Labels = [LabelCount]string{}
	key.TextColor = [LabelCount]string{}
	key.TextSize = [LabelCount]int{}
	if !st.width2 {
		key.Width2 = key.Width
	}
	if !st.height2 {
		key.Height2 = key.Height
	}

	for pos, text := range parts {
		if text == "" {
			continue
		}
		slot := labelMap[st.align][pos]
		if slot < 0 {
			continue
		}
		key.Labels[slot] = text
		if c := st.colors[pos]; c != "" && c != key.Default.TextColor {
			key.TextColor[slot] = c
		}
		if s := st.sizes[pos]; s != 0 && s != key.Default.TextSize {
			key.TextSize[slot] = s
		}
	}

	next := &st.key
	next.X += key.Width
	next.Width, next.Height = 1, 1
	next.Width2, next.Height2 = 1, 1
	next.X2, next.Y2 = 0, 0
	next.Nub, next.Stepped, next.Decal = false, false, false
	st.width2, st.height2 = false, false

	return st, key, nil
}

func (st decodeState) endRow() decodeState {
	st.key.Y++
	st.key.X = st.key.RotationX
	return st
}

func firstToken(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
