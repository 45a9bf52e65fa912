package main

import (
	"bytes"
	"codeberg.org/miketth/kleboard/pkg/kle"
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
	"path/filepath"
	"reflect"
)

const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatMsgpack = "msgpack"
)

func (a *app) decodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Expand a compact layout (or raw editor data) into one record per key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbd, err := readKeyboard(cmd, args)
			if err != nil {
				return err
			}
			a.log.Debugw("decoded layout", "keys", len(kbd.Keys))

			data, err := marshalKeyboard(kbd, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, yaml or msgpack")
	return cmd
}

func marshalKeyboard(kbd kle.Keyboard, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(kbd, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case formatYAML:
		data, err := yaml.Marshal(kbd)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	case formatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(kbd); err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func unmarshalKeyboard(data []byte, format string) (kle.Keyboard, error) {
	kbd := kle.NewKeyboard()
	switch format {
	case formatJSON:
		if err := json.Unmarshal(data, &kbd); err != nil {
			return kle.Keyboard{}, fmt.Errorf("decode json: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &kbd); err != nil {
			return kle.Keyboard{}, fmt.Errorf("decode yaml: %w", err)
		}
	case formatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&kbd); err != nil {
			return kle.Keyboard{}, fmt.Errorf("decode msgpack: %w", err)
		}
	default:
		return kle.Keyboard{}, fmt.Errorf("unknown format %q", format)
	}
	return kbd, nil
}

func (a *app) encodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Compact an expanded keyboard (json, yaml or msgpack) into a layout document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromExt(args)
			}
			kbd, err := unmarshalKeyboard(data, format)
			if err != nil {
				return err
			}
			return writeCompact(cmd.OutOrStdout(), kbd)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json, yaml or msgpack (default from file extension)")
	return cmd
}

func formatFromExt(args []string) string {
	if len(args) == 0 {
		return formatJSON
	}
	switch filepath.Ext(args[0]) {
	case ".yaml", ".yml":
		return formatYAML
	case ".msgpack", ".mp":
		return formatMsgpack
	default:
		return formatJSON
	}
}

func (a *app) roundtripCmd() *cobra.Command {
	var exact bool
	cmd := &cobra.Command{
		Use:   "roundtrip [file]",
		Short: "Check that encoding a decoded layout reproduces it",
		Long: "Decodes the input, encodes it again and decodes the result, which must match the first decode.\n" +
			"Compact documents are also compared byte for byte with the re-encoded form; --exact turns a\n" +
			"difference there into an error.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			kbd, err := kle.Parse(data)
			if err != nil {
				return fmt.Errorf("parse layout: %w", err)
			}
			encoded, err := kle.Marshal(kbd)
			if err != nil {
				return fmt.Errorf("encode layout: %w", err)
			}
			again, err := kle.Decode(encoded)
			if err != nil {
				return fmt.Errorf("decode encoded layout: %w", err)
			}

			sorted := kbd.Clone()
			kle.SortKeys(sorted.Keys)
			if !reflect.DeepEqual(sorted, again) {
				for i := range min(len(sorted.Keys), len(again.Keys)) {
					if !reflect.DeepEqual(sorted.Keys[i], again.Keys[i]) {
						a.log.Errorw("key differs", "index", i, "want", sorted.Keys[i], "got", again.Keys[i])
						break
					}
				}
				return fmt.Errorf("round trip changed the layout")
			}

			status := ""
			if kle.IsDocument(data) {
				var compact bytes.Buffer
				if err := json.Compact(&compact, data); err != nil {
					return fmt.Errorf("compact input: %w", err)
				}
				if bytes.Equal(compact.Bytes(), encoded) {
					status = ", byte-identical"
				} else {
					if exact {
						return fmt.Errorf("re-encoded document differs from input")
					}
					a.log.Infow("re-encoded document differs from input", "input", compact.Len(), "encoded", len(encoded))
					status = ", normalized"
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d keys%s\n%s\n", len(kbd.Keys), status, encoded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "fail unless a compact document re-encodes to the same bytes")
	return cmd
}
