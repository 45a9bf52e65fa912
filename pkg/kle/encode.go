package kle

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
)

// encodeState mirrors decodeState from the writer's side: it holds what a
// decoder would believe after reading everything emitted so far. step
// threads it through the keys without mutating its input.
type encodeState struct {
	x, y      float64
	r, rx, ry float64

	color     string
	textColor string
	textSize  int
	sizes     [LabelCount]int
	align     int

	ghost       bool
	profile     string
	switchMount string
	switchBrand string
	switchType  string
}

func newEncodeState() encodeState {
	return encodeState{
		y:         -1,
		color:     DefaultKeyColor,
		textColor: DefaultTextColor,
		textSize:  DefaultTextSize,
		align:     DefaultAlignment,
	}
}

// Encode produces the compact document for kbd: an optional metadata
// object followed by one array per row. Keys are written in canonical sort
// order; kbd itself is left untouched.
func Encode(kbd Keyboard) []any {
	doc := []any{}
	if meta, ok := encodeMetadata(kbd.Meta); ok {
		doc = append(doc, meta)
	}

	keys := slices.Clone(kbd.Keys)
	SortKeys(keys)

	st := newEncodeState()
	var row []any
	for i, key := range keys {
		if i == 0 || st.startsRow(key) {
			if row != nil {
				doc = append(doc, row)
			}
			row = []any{}
			st = st.nextRow(key)
		}
		var p *props
		var labels string
		st, p, labels = st.step(key)
		if p != nil {
			row = append(row, p)
		}
		row = append(row, labels)
	}
	if row != nil {
		doc = append(doc, row)
	}
	return doc
}

// Marshal is Encode followed by JSON serialization.
func Marshal(kbd Keyboard) ([]byte, error) {
	return json.Marshal(Encode(kbd))
}

func encodeMetadata(m Metadata) (*metaProps, bool) {
	var mp metaProps
	ok := false
	str := func(v, def string) *string {
		if v == def {
			return nil
		}
		ok = true
		return ptr(v)
	}
	mp.Author = str(m.Author, "")
	mp.Backcolor = str(m.Backcolor, DefaultBackcolor)
	if m.Background != nil {
		bg := *m.Background
		mp.Background = &bg
		ok = true
	}
	mp.Name = str(m.Name, "")
	mp.Notes = str(m.Notes, "")
	mp.Radii = str(m.Radii, "")
	mp.SwitchBrand = str(m.SwitchBrand, "")
	mp.SwitchMount = str(m.SwitchMount, "")
	mp.SwitchType = str(m.SwitchType, "")
	return &mp, ok
}

func (st encodeState) startsRow(key Key) bool {
	return key.RotationAngle != st.r ||
		key.RotationX != st.rx ||
		key.RotationY != st.ry ||
		delta(key.Y, st.y) != 0
}

func (st encodeState) nextRow(key Key) encodeState {
	st.y++
	if key.RotationX != st.rx || key.RotationY != st.ry {
		st.y = key.RotationY
	}
	st.x = key.RotationX
	return st
}

// step returns the state after key and the property diff needed to reach
// it, or nil when nothing changed.
func (st encodeState) step(key Key) (encodeState, *props, string) {
	var p props
	changed := false
	mark := func() { changed = true }

	if key.RotationAngle != st.r {
		st.r = key.RotationAngle
		p.R = ptr(st.r)
		mark()
	}
	if key.RotationX != st.rx {
		st.rx = key.RotationX
		p.RX = ptr(st.rx)
		mark()
	}
	if key.RotationY != st.ry {
		st.ry = key.RotationY
		p.RY = ptr(st.ry)
		mark()
	}
	if dy := delta(key.Y, st.y); dy != 0 {
		st.y += dy
		p.Y = ptr(dy)
		mark()
	}
	if dx := delta(key.X, st.x); dx != 0 {
		st.x += dx
		p.X = ptr(dx)
		mark()
	}
	st.x += key.Width

	if key.Color != st.color {
		st.color = key.Color
		p.C = ptr(key.Color)
		mark()
	}

	align := chooseAlignment(key.Labels)

	if t := textColors(key, align); t != st.textColor {
		st.textColor = t
		p.T = ptr(t)
		mark()
	}
	if key.Ghost != st.ghost {
		st.ghost = key.Ghost
		p.G = ptr(key.Ghost)
		mark()
	}
	if key.Profile != st.profile {
		st.profile = key.Profile
		p.P = ptr(key.Profile)
		mark()
	}
	if key.SwitchMount != st.switchMount {
		st.switchMount = key.SwitchMount
		p.SM = ptr(key.SwitchMount)
		mark()
	}
	if key.SwitchBrand != st.switchBrand {
		st.switchBrand = key.SwitchBrand
		p.SB = ptr(key.SwitchBrand)
		mark()
	}
	if key.SwitchType != st.switchType {
		st.switchType = key.SwitchType
		p.ST = ptr(key.SwitchType)
		mark()
	}
	if align != st.align {
		st.align = align
		p.A = ptr(align)
		mark()
	}

	if key.Default.TextSize != st.textSize {
		st.textSize = key.Default.TextSize
		st.sizes = [LabelCount]int{}
		p.F = ptr(st.textSize)
		mark()
	}
	if sizes, ok := textSizes(key, align, st.sizes); !ok {
		switch {
		case sizes == [LabelCount]int{}:
			p.F = ptr(key.Default.TextSize)
		case uniformTail(sizes):
			p.F2 = ptr(sizes[1])
		default:
			p.FA = trimZeros(sizes[:])
		}
		st.sizes = sizes
		mark()
	}

	if key.Width != 1 {
		p.W = ptr(key.Width)
		mark()
	}
	if key.Height != 1 {
		p.H = ptr(key.Height)
		mark()
	}
	if key.Width2 != key.Width {
		p.W2 = ptr(key.Width2)
		mark()
	}
	if key.Height2 != key.Height {
		p.H2 = ptr(key.Height2)
		mark()
	}
	if key.X2 != 0 {
		p.X2 = ptr(key.X2)
		mark()
	}
	if key.Y2 != 0 {
		p.Y2 = ptr(key.Y2)
		mark()
	}
	if key.Nub {
		p.N = ptr(true)
		mark()
	}
	if key.Stepped {
		p.L = ptr(true)
		mark()
	}
	if key.Decal {
		p.D = ptr(true)
		mark()
	}

	var ordered [LabelCount]string
	for pos, slot := range labelMap[align] {
		if slot >= 0 {
			ordered[pos] = key.Labels[slot]
		}
	}
	labels := strings.TrimRight(strings.Join(ordered[:], "\n"), "\n")

	if !changed {
		return st, nil, labels
	}
	return st, &p, labels
}

// textColors renders the "t" value for key under align. Position 0 always
// holds the key's base color; other positions are only kept where they
// differ from it.
func textColors(key Key, align int) string {
	def := key.Default.TextColor
	if def == "" {
		def = DefaultTextColor
	}

	var out [LabelCount]string
	var labelled [LabelCount]bool
	for pos, slot := range labelMap[align] {
		if slot < 0 || key.Labels[slot] == "" {
			continue
		}
		labelled[pos] = true
		if c := key.TextColor[slot]; c != key.Default.TextColor {
			out[pos] = c
		}
	}

	if out[0] == "" {
		out[0] = def
	} else {
		for pos := 1; pos < LabelCount; pos++ {
			if labelled[pos] && out[pos] == "" {
				out[pos] = def
			}
		}
	}
	for pos := 1; pos < LabelCount; pos++ {
		if out[pos] == out[0] {
			out[pos] = ""
		}
	}
	return strings.TrimRight(strings.Join(out[:], "\n"), "\n")
}

// textSizes returns the serialized sizes for key and whether current already
// matches them on every labelled position. Unlabelled positions inherit
// current.
func textSizes(key Key, align int, current [LabelCount]int) ([LabelCount]int, bool) {
	var out [LabelCount]int
	same := true
	for pos, slot := range labelMap[align] {
		labelled := slot >= 0 && key.Labels[slot] != ""
		if labelled {
			out[pos] = key.TextSize[slot]
		} else {
			out[pos] = current[pos]
		}
		if out[pos] == key.Default.TextSize {
			out[pos] = 0
		}
		if labelled && out[pos] != current[pos] {
			same = false
		}
	}
	return out, same
}

func uniformTail(sizes [LabelCount]int) bool {
	if sizes[0] != 0 {
		return false
	}
	for _, s := range sizes[2:] {
		if s != sizes[1] {
			return false
		}
	}
	return true
}

func trimZeros(v []int) []int {
	end := len(v)
	for end > 0 && v[end-1] == 0 {
		end--
	}
	return slices.Clone(v[:end])
}

// delta is the offset written for a coordinate change, rounded so that float
// noise does not leak into the document.
func delta(target, current float64) float64 {
	d := math.Round((target-current)*1e6) / 1e6
	if d == 0 {
		return 0
	}
	return d
}
