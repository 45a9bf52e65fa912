package qmk

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"errors"
	"fmt"
)

var ErrPinCountMismatch = errors.New("number of columns/rows in netlist does not match the layout")

const (
	DiodeCol2Row = "COL2ROW"
	DiodeRow2Col = "ROW2COL"
)

type MatrixPins struct {
	Cols []string `json:"cols"`
	Rows []string `json:"rows"`
}

type USB struct {
	VID           string `json:"vid"`
	PID           string `json:"pid"`
	DeviceVersion string `json:"device_version"`
}

type Rotary struct {
	PinA string `json:"pin_a"`
	PinB string `json:"pin_b"`
}

type Encoder struct {
	Rotary []Rotary `json:"rotary"`
}

type Layout struct {
	Layout []LayoutKey `json:"layout"`
}

type LayoutKey struct {
	Label  string   `json:"label,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	W      *float64 `json:"w,omitempty"`
	H      *float64 `json:"h,omitempty"`
	Matrix *[2]int  `json:"matrix,omitempty"`
}

// Info is a QMK info.json document.
type Info struct {
	KeyboardName   string            `json:"keyboard_name"`
	Maintainer     string            `json:"maintainer"`
	Manufacturer   string            `json:"manufacturer"`
	Layouts        map[string]Layout `json:"layouts"`
	Processor      string            `json:"processor,omitempty"`
	Bootloader     string            `json:"bootloader,omitempty"`
	Features       map[string]bool   `json:"features,omitempty"`
	Board          string            `json:"board,omitempty"`
	URL            string            `json:"url,omitempty"`
	USB            *USB              `json:"usb,omitempty"`
	DiodeDirection string            `json:"diode_direction"`
	MatrixPins     MatrixPins        `json:"matrix_pins"`
	Encoder        *Encoder          `json:"encoder,omitempty"`
}

type InfoOptions struct {
	Name           string
	Maintainer     string
	Manufacturer   string
	URL            string
	VendorID       string
	ProductID      string
	DeviceVersion  string
	MCU            MCU
	DiodeDirection string
	// Pins from a netlist; nil fills the matrix with "X" placeholders.
	Pins       *MatrixPins
	Alternates []multilayout.Alternate
}

// BuildInfo renders kbd as info.json. The main layout is the canonical
// resolution; each alternate adds a LAYOUT_<name> entry.
func BuildInfo(kbd kle.Keyboard, opts InfoOptions) (*Info, error) {
	encoders, err := EncoderCount(kbd.Keys)
	if err != nil {
		return nil, fmt.Errorf("count encoders: %w", err)
	}

	alternates, err := multilayout.AlternateLayouts(kbd, opts.Alternates)
	if err != nil {
		return nil, fmt.Errorf("resolve alternate layouts: %w", err)
	}

	rows, cols, err := MatrixSize(kbd.Keys)
	if err != nil {
		return nil, fmt.Errorf("get matrix size: %w", err)
	}

	canonical, err := multilayout.ResolveCanonical(kbd)
	if err != nil {
		return nil, fmt.Errorf("resolve layout: %w", err)
	}
	all, err := LayoutKeys(canonical.Keys)
	if err != nil {
		return nil, err
	}

	info := &Info{
		KeyboardName:   firstNonEmpty(opts.Name, kbd.Meta.Name, "Keyboard"),
		Maintainer:     firstNonEmpty(opts.Maintainer, "qmk"),
		Manufacturer:   firstNonEmpty(opts.Manufacturer, "MANUFACTURER"),
		URL:            opts.URL,
		DiodeDirection: firstNonEmpty(opts.DiodeDirection, DiodeCol2Row),
		Layouts:        map[string]Layout{},
	}

	if len(alternates) == 0 || (len(alternates) == 1 && alternates[0].Name == "all") {
		info.Layouts["LAYOUT"] = Layout{Layout: all}
	} else {
		info.Layouts["LAYOUT_all"] = Layout{Layout: all}
		for _, alt := range alternates {
			keys, err := LayoutKeys(alt.Keys)
			if err != nil {
				return nil, fmt.Errorf("layout %q: %w", alt.Name, err)
			}
			info.Layouts["LAYOUT_"+alt.Name] = Layout{Layout: keys}
		}
	}

	if opts.MCU.Known() {
		info.Processor = opts.MCU.Processor
		info.Bootloader = opts.MCU.Bootloader
		info.Board = opts.MCU.Board
		info.Features = map[string]bool{
			"bootmagic": true,
			"command":   false,
			"console":   false,
			"extrakey":  true,
			"mousekey":  true,
			"nkro":      true,
		}
	}

	if opts.VendorID != "" && opts.ProductID != "" && opts.DeviceVersion != "" {
		info.USB = &USB{VID: opts.VendorID, PID: opts.ProductID, DeviceVersion: opts.DeviceVersion}
	}

	if opts.Pins != nil {
		if len(opts.Pins.Cols) != cols || len(opts.Pins.Rows) != rows {
			return nil, fmt.Errorf("%w: netlist has %d cols, %d rows; layout has %d cols, %d rows",
				ErrPinCountMismatch, len(opts.Pins.Cols), len(opts.Pins.Rows), cols, rows)
		}
		info.MatrixPins = *opts.Pins
	} else {
		info.MatrixPins = MatrixPins{Cols: placeholders(cols), Rows: placeholders(rows)}
	}

	if encoders > 0 {
		if info.Features == nil {
			info.Features = map[string]bool{}
		}
		info.Features["encoder"] = true
		info.Encoder = &Encoder{Rotary: make([]Rotary, encoders)}
		for i := range info.Encoder.Rotary {
			info.Encoder.Rotary[i] = Rotary{PinA: "X", PinB: "X"}
		}
	}

	return info, nil
}

// LayoutKeys converts resolved keys into info.json layout entries. Decals
// and encoders without a switch are skipped.
func LayoutKeys(keys []kle.Key) ([]LayoutKey, error) {
	keys, err := switchKeys(keys)
	if err != nil {
		return nil, err
	}
	out := make([]LayoutKey, 0, len(keys))
	for _, k := range keys {
		if k.Decal {
			continue
		}
		lk := LayoutKey{Label: k.Labels[kle.SlotLabel], X: k.X, Y: k.Y}
		if k.Width != 1 {
			lk.W = &k.Width
		}
		if k.Height != 1 {
			lk.H = &k.Height
		}
		c, ok, err := multilayout.ExtractRowCol(k)
		if err != nil {
			return nil, err
		}
		if ok {
			lk.Matrix = &[2]int{c.Row, c.Col}
		}
		out = append(out, lk)
	}
	return out, nil
}

func placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "X"
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
