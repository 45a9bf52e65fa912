package kle

import (
	"encoding/json"
	"gopkg.in/yaml.v3"
)

// LabelCount is the number of label slots on every key.
const LabelCount = 12

// Defaults assumed by both the decoder and the encoder. A field equal to
// its default is never written to the compact form.
const (
	DefaultKeyColor  = "#cccccc"
	DefaultTextColor = "#000000"
	DefaultTextSize  = 3
	DefaultBackcolor = "#eeeeee"
	DefaultAlignment = 4
)

// KeyDefault is the base text style used by label slots without an override.
type KeyDefault struct {
	TextColor string `json:"textColor" yaml:"textColor"`
	TextSize  int    `json:"textSize" yaml:"textSize"`
}

// Key is one physical key cap with absolute geometry and all 12 label slots
// in canonical order. A zero TextColor or TextSize entry means the slot uses
// Default.
type Key struct {
	Color     string             `json:"color" yaml:"color"`
	Labels    [LabelCount]string `json:"labels" yaml:"labels"`
	TextColor [LabelCount]string `json:"textColor" yaml:"textColor"`
	TextSize  [LabelCount]int    `json:"textSize" yaml:"textSize"`
	Default   KeyDefault         `json:"default" yaml:"default"`

	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	X2      float64 `json:"x2" yaml:"x2"`
	Y2      float64 `json:"y2" yaml:"y2"`
	Width2  float64 `json:"width2" yaml:"width2"`
	Height2 float64 `json:"height2" yaml:"height2"`

	RotationX     float64 `json:"rotation_x" yaml:"rotation_x"`
	RotationY     float64 `json:"rotation_y" yaml:"rotation_y"`
	RotationAngle float64 `json:"rotation_angle" yaml:"rotation_angle"`

	Decal   bool `json:"decal" yaml:"decal"`
	Ghost   bool `json:"ghost" yaml:"ghost"`
	Stepped bool `json:"stepped" yaml:"stepped"`
	Nub     bool `json:"nub" yaml:"nub"`

	Profile     string `json:"profile" yaml:"profile"`
	SwitchMount string `json:"sm" yaml:"sm"`
	SwitchBrand string `json:"sb" yaml:"sb"`
	SwitchType  string `json:"st" yaml:"st"`
}

// NewKey returns a 1x1 key at the origin with default styling.
func NewKey() Key {
	return Key{
		Color:   DefaultKeyColor,
		Default: KeyDefault{TextColor: DefaultTextColor, TextSize: DefaultTextSize},
		Width:   1,
		Height:  1,
		Width2:  1,
		Height2: 1,
	}
}

// UnmarshalJSON fills fields missing from data with NewKey defaults.
func (k *Key) UnmarshalJSON(data []byte) error {
	type plain Key
	p := plain(NewKey())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*k = Key(p)
	return nil
}

func (k *Key) UnmarshalYAML(value *yaml.Node) error {
	type plain Key
	p := plain(NewKey())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*k = Key(p)
	return nil
}

type Background struct {
	Name  string `json:"name" yaml:"name"`
	Style string `json:"style" yaml:"style"`
}

// Metadata is the optional first element of a compact document.
type Metadata struct {
	Author      string      `json:"author" yaml:"author"`
	Backcolor   string      `json:"backcolor" yaml:"backcolor"`
	Background  *Background `json:"background,omitempty" yaml:"background,omitempty"`
	Name        string      `json:"name" yaml:"name"`
	Notes       string      `json:"notes" yaml:"notes"`
	Radii       string      `json:"radii" yaml:"radii"`
	SwitchBrand string      `json:"switchBrand" yaml:"switchBrand"`
	SwitchMount string      `json:"switchMount" yaml:"switchMount"`
	SwitchType  string      `json:"switchType" yaml:"switchType"`
}

func NewMetadata() Metadata {
	return Metadata{Backcolor: DefaultBackcolor}
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	type plain Metadata
	p := plain(NewMetadata())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Metadata(p)
	return nil
}

func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	type plain Metadata
	p := plain(NewMetadata())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = Metadata(p)
	return nil
}

// Keyboard is the fully expanded in-memory form. Key order is serialization
// order; geometry lives in each key.
type Keyboard struct {
	Meta Metadata `json:"meta" yaml:"meta"`
	Keys []Key    `json:"keys" yaml:"keys"`
}

func NewKeyboard() Keyboard {
	return Keyboard{Meta: NewMetadata()}
}

// Clone returns a deep copy. Keys are plain values, so copying the slice is
// enough; only the background pointer needs care.
func (k Keyboard) Clone() Keyboard {
	out := Keyboard{Meta: k.Meta}
	if k.Meta.Background != nil {
		bg := *k.Meta.Background
		out.Meta.Background = &bg
	}
	if k.Keys != nil {
		out.Keys = make([]Key, len(k.Keys))
		copy(out.Keys, k.Keys)
	}
	return out
}
