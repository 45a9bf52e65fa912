package kleboard

import (
	"codeberg.org/miketth/kleboard/pkg/config"
	"codeberg.org/miketth/kleboard/pkg/netlist"
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"codeberg.org/miketth/kleboard/pkg/schema"
	"codeberg.org/miketth/kleboard/pkg/via"
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"os"
)

type renderer struct {
	name   string
	render func(ctx context.Context, in Input) ([]File, error)
}

func (r renderer) Name() string { return r.name }

func (r renderer) Render(ctx context.Context, in Input) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.render(ctx, in)
}

func single(name string, data []byte) []File {
	return []File{{Name: name, Data: data}}
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// InfoRenderer writes info.json. A nil validator skips schema checks.
func InfoRenderer(opts qmk.InfoOptions, v *schema.Validator) Renderer {
	return renderer{name: config.OutputInfo, render: func(_ context.Context, in Input) ([]File, error) {
		o := opts
		o.Alternates = in.Alternates
		info, err := qmk.BuildInfo(in.Keyboard, o)
		if err != nil {
			return nil, err
		}
		data, err := marshalJSON(info)
		if err != nil {
			return nil, err
		}
		if v != nil {
			if err := v.Validate(schema.Info, data); err != nil {
				return nil, err
			}
		}
		return single("info.json", data), nil
	}}
}

func LayoutRenderer() Renderer {
	return renderer{name: config.OutputLayout, render: func(_ context.Context, in Input) ([]File, error) {
		out, err := qmk.LayoutMacro(in.Keyboard)
		if err != nil {
			return nil, err
		}
		return single("keyboard.h", []byte(out)), nil
	}}
}

func KeymapRenderer(opts qmk.KeymapOptions) Renderer {
	return renderer{name: config.OutputKeymap, render: func(_ context.Context, in Input) ([]File, error) {
		out, err := qmk.Keymap(in.Keyboard, opts)
		if err != nil {
			return nil, err
		}
		return single("keymaps/default/keymap.c", []byte(out)), nil
	}}
}

func ConfigRenderer(layers int) Renderer {
	return renderer{name: config.OutputConfig, render: func(_ context.Context, _ Input) ([]File, error) {
		return single("config.h", []byte(qmk.MainConfig(layers))), nil
	}}
}

// VIARenderer writes the VIA/VIAL definition. A nil validator skips schema
// checks.
func VIARenderer(opts via.Options, fileName string, v *schema.Validator) Renderer {
	return renderer{name: config.OutputVIA, render: func(_ context.Context, in Input) ([]File, error) {
		def, err := via.BuildDefinition(in.Keyboard, opts)
		if err != nil {
			return nil, err
		}
		data, err := marshalJSON(def)
		if err != nil {
			return nil, err
		}
		if v != nil {
			if err := v.Validate(schema.Definition, data); err != nil {
				return nil, err
			}
		}
		return single(fileName, data), nil
	}}
}

func VialConfigRenderer(uid uuid.UUID) Renderer {
	return renderer{name: config.OutputVialConfig, render: func(_ context.Context, in Input) ([]File, error) {
		out, err := via.VialConfig(in.Keyboard, uid)
		if err != nil {
			return nil, err
		}
		return single("keymaps/vial/config.h", []byte(out)), nil
	}}
}

// RenderersFromConfig builds the enabled renderers, loading the netlist and
// keymap resources the config points at.
func RenderersFromConfig(cfg *config.Config, v *schema.Validator) ([]Renderer, error) {
	mcu, err := cfg.ResolveMCU()
	if err != nil {
		return nil, fmt.Errorf("resolve mcu: %w", err)
	}

	var renderers []Renderer

	if cfg.Enabled(config.OutputInfo) {
		opts := qmk.InfoOptions{
			Name:           cfg.Keyboard.Name,
			Maintainer:     cfg.Keyboard.Maintainer,
			Manufacturer:   cfg.Keyboard.Manufacturer,
			URL:            cfg.Keyboard.URL,
			VendorID:       cfg.USB.VendorID,
			ProductID:      cfg.USB.ProductID,
			DeviceVersion:  cfg.USB.DeviceVersion,
			MCU:            mcu,
			DiodeDirection: cfg.Matrix.DiodeDirection,
		}
		if cfg.Matrix.Netlist != "" {
			pins, err := LoadPins(cfg.Matrix.Netlist, mcu)
			if err != nil {
				return nil, err
			}
			opts.Pins = &pins
		}
		renderers = append(renderers, InfoRenderer(opts, v))
	}

	if cfg.Enabled(config.OutputLayout) {
		renderers = append(renderers, LayoutRenderer())
	}

	if cfg.Enabled(config.OutputKeymap) {
		opts, err := keymapOptions(cfg.Keymap)
		if err != nil {
			return nil, err
		}
		renderers = append(renderers, KeymapRenderer(opts))
	}

	if cfg.Enabled(config.OutputConfig) {
		renderers = append(renderers, ConfigRenderer(cfg.Keymap.Layers))
	}

	if cfg.Enabled(config.OutputVIA) {
		fileName := "via.json"
		if cfg.VIA.Vial {
			fileName = "vial.json"
		}
		opts := via.Options{
			Name:      cfg.Keyboard.Name,
			VendorID:  cfg.USB.VendorID,
			ProductID: cfg.USB.ProductID,
			Lighting:  cfg.VIA.Lighting,
		}
		renderers = append(renderers, VIARenderer(opts, fileName, v))
	}

	if cfg.Enabled(config.OutputVialConfig) {
		uid := uuid.New()
		if cfg.VIA.UID != "" {
			uid, err = uuid.Parse(cfg.VIA.UID)
			if err != nil {
				return nil, fmt.Errorf("parse vial uid: %w", err)
			}
		}
		renderers = append(renderers, VialConfigRenderer(uid))
	}

	return renderers, nil
}

// LoadPins extracts the matrix pins of mcu from a netlist file.
func LoadPins(path string, mcu qmk.MCU) (qmk.MatrixPins, error) {
	n, err := netlist.ParseFile(path)
	if err != nil {
		return qmk.MatrixPins{}, fmt.Errorf("parse netlist: %w", err)
	}
	pins, err := n.MatrixPins(mcu)
	if err != nil {
		return qmk.MatrixPins{}, fmt.Errorf("extract matrix pins: %w", err)
	}
	return pins, nil
}

func keymapOptions(k config.Keymap) (qmk.KeymapOptions, error) {
	opts := qmk.KeymapOptions{Layers: k.Layers, LabelIndex: k.LabelIndex}

	if k.LayoutFile != "" {
		data, err := os.ReadFile(k.LayoutFile)
		if err != nil {
			return opts, fmt.Errorf("read layout file: %w", err)
		}
		opts.Saved, err = qmk.ParseSavedLayout(data)
		if err != nil {
			return opts, err
		}
	}
	if k.KeycodesFile != "" {
		data, err := os.ReadFile(k.KeycodesFile)
		if err != nil {
			return opts, fmt.Errorf("read keycodes file: %w", err)
		}
		opts.Aliases = qmk.ParseKeycodeAliases(string(data))
	}
	if k.ConversionFile != "" {
		data, err := os.ReadFile(k.ConversionFile)
		if err != nil {
			return opts, fmt.Errorf("read conversion file: %w", err)
		}
		opts.Conversions = qmk.ParseConversions(string(data))
	}
	return opts, nil
}
