package config

import (
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"regexp"
	"strings"
)

// Output names, also used as Output.Files entries.
const (
	OutputInfo       = "info"
	OutputLayout     = "layout"
	OutputKeymap     = "keymap"
	OutputConfig     = "config"
	OutputVIA        = "via"
	OutputVialConfig = "vial-config"
)

var AllOutputs = []string{OutputInfo, OutputLayout, OutputKeymap, OutputConfig, OutputVIA, OutputVialConfig}

type Config struct {
	Keyboard Keyboard                `yaml:"keyboard" toml:"keyboard" json:"keyboard"`
	USB      USB                     `yaml:"usb" toml:"usb" json:"usb"`
	MCU      MCU                     `yaml:"mcu" toml:"mcu" json:"mcu"`
	Matrix   Matrix                  `yaml:"matrix" toml:"matrix" json:"matrix"`
	VIA      VIA                     `yaml:"via" toml:"via" json:"via"`
	Keymap   Keymap                  `yaml:"keymap" toml:"keymap" json:"keymap"`
	Layouts  []multilayout.Alternate `yaml:"layouts" toml:"layouts" json:"layouts" validate:"dive"`
	Output   Output                  `yaml:"output" toml:"output" json:"output"`
}

type Keyboard struct {
	Name         string `yaml:"name" toml:"name" json:"name"`
	Maintainer   string `yaml:"maintainer" toml:"maintainer" json:"maintainer"`
	Manufacturer string `yaml:"manufacturer" toml:"manufacturer" json:"manufacturer"`
	URL          string `yaml:"url" toml:"url" json:"url" validate:"omitempty,url"`
}

type USB struct {
	VendorID      string `yaml:"vendor_id" toml:"vendor_id" json:"vendor_id" validate:"omitempty,usbid"`
	ProductID     string `yaml:"product_id" toml:"product_id" json:"product_id" validate:"omitempty,usbid"`
	DeviceVersion string `yaml:"device_version" toml:"device_version" json:"device_version"`
}

// MCU selects a preset; the remaining fields override single preset values.
type MCU struct {
	Preset             string `yaml:"preset" toml:"preset" json:"preset" validate:"mcupreset"`
	Processor          string `yaml:"processor" toml:"processor" json:"processor"`
	Bootloader         string `yaml:"bootloader" toml:"bootloader" json:"bootloader"`
	Board              string `yaml:"board" toml:"board" json:"board"`
	OutputPinPrefix    string `yaml:"output_pin_prefix" toml:"output_pin_prefix" json:"output_pin_prefix"`
	SchematicPinPrefix string `yaml:"schematic_pin_prefix" toml:"schematic_pin_prefix" json:"schematic_pin_prefix"`
}

type Matrix struct {
	DiodeDirection string `yaml:"diode_direction" toml:"diode_direction" json:"diode_direction" validate:"oneof=COL2ROW ROW2COL"`
	Netlist        string `yaml:"netlist" toml:"netlist" json:"netlist"`
}

type VIA struct {
	Lighting string `yaml:"lighting" toml:"lighting" json:"lighting"`
	Vial     bool   `yaml:"vial" toml:"vial" json:"vial"`
	// UID fixes the VIAL keyboard UID; a random one is generated when empty.
	UID string `yaml:"uid" toml:"uid" json:"uid" validate:"omitempty,uuid"`
}

type Keymap struct {
	Layers         int    `yaml:"layers" toml:"layers" json:"layers" validate:"min=1,max=32"`
	LabelIndex     int    `yaml:"label_index" toml:"label_index" json:"label_index" validate:"min=0,max=11"`
	LayoutFile     string `yaml:"layout_file" toml:"layout_file" json:"layout_file"`
	KeycodesFile   string `yaml:"keycodes_file" toml:"keycodes_file" json:"keycodes_file"`
	ConversionFile string `yaml:"conversion_file" toml:"conversion_file" json:"conversion_file"`
}

type Output struct {
	Dir string `yaml:"dir" toml:"dir" json:"dir" validate:"required"`
	// Files limits generation to the named outputs; empty means all.
	Files []string `yaml:"files" toml:"files" json:"files" validate:"dive,oneof=info layout keymap config via vial-config"`
}

func DefaultConfig() *Config {
	return &Config{
		MCU:    MCU{Preset: "None"},
		Matrix: Matrix{DiodeDirection: qmk.DiodeCol2Row},
		VIA:    VIA{Lighting: "none", Vial: true},
		Keymap: Keymap{Layers: qmk.DefaultLayers, LabelIndex: qmk.DefaultLabelIndex},
		Output: Output{Dir: "out"},
	}
}

var usbID = regexp.MustCompile(`^0x[0-9A-Fa-f]{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("usbid", func(fl validator.FieldLevel) bool {
		return usbID.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("mcupreset", func(fl validator.FieldLevel) bool {
		_, err := qmk.LookupMCU(fl.Field().String())
		return err == nil
	})
	return v
}

func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	seen := map[string]bool{}
	for _, l := range c.Layouts {
		name := multilayout.LayoutName(l.Name)
		if seen[name] {
			return fmt.Errorf("invalid config: duplicate layout name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// ResolveMCU returns the preset with the configured overrides applied.
func (c *Config) ResolveMCU() (qmk.MCU, error) {
	m, err := qmk.LookupMCU(c.MCU.Preset)
	if err != nil {
		return qmk.MCU{}, err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&m.Processor, c.MCU.Processor)
	override(&m.Bootloader, c.MCU.Bootloader)
	override(&m.Board, c.MCU.Board)
	override(&m.OutputPinPrefix, c.MCU.OutputPinPrefix)
	override(&m.SchematicPinPrefix, c.MCU.SchematicPinPrefix)
	return m, nil
}

// Enabled reports whether the named output should be generated.
func (c *Config) Enabled(output string) bool {
	if len(c.Output.Files) == 0 {
		return output != OutputVialConfig || c.VIA.Vial
	}
	for _, f := range c.Output.Files {
		if f == output {
			return true
		}
	}
	return false
}
