package qmk

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMCU = errors.New("unknown mcu preset")

// MCU is a microcontroller preset. The pin prefixes translate a schematic
// pin name (GPIO12) into a firmware pin name (GP12).
type MCU struct {
	Preset             string
	Processor          string
	Board              string
	Bootloader         string
	OutputPinPrefix    string
	SchematicPinPrefix string
}

var mcuPresets = []MCU{
	{Preset: "None"},
	{
		Preset:             "RP2040",
		Processor:          "RP2040",
		Bootloader:         "rp2040",
		OutputPinPrefix:    "GP",
		SchematicPinPrefix: "GPIO",
	},
	{
		Preset:             "32U4",
		Processor:          "atmega32u4",
		Bootloader:         "atmel-dfu",
		SchematicPinPrefix: "P",
	},
	{
		Preset:             "STM32",
		Processor:          "STM32FXXX",
		Board:              "GENERIC_STM_FXXX",
		Bootloader:         "stm32-dfu",
		SchematicPinPrefix: "P",
	},
}

// Presets lists the preset names in display order.
func Presets() []string {
	names := make([]string, len(mcuPresets))
	for i, m := range mcuPresets {
		names[i] = m.Preset
	}
	return names
}

// LookupMCU finds a preset by name, ignoring case. An empty name is "None".
func LookupMCU(name string) (MCU, error) {
	if name == "" {
		return mcuPresets[0], nil
	}
	for _, m := range mcuPresets {
		if strings.EqualFold(m.Preset, name) {
			return m, nil
		}
	}
	return MCU{}, fmt.Errorf("%w: %q", ErrUnknownMCU, name)
}

// Known reports whether the preset names a real controller.
func (m MCU) Known() bool {
	return m.Processor != "" && m.Bootloader != ""
}
