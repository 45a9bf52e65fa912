package main

import (
	"bytes"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	padFixture     = "pkg/kleboard/testdata/pad.json"
	netlistFixture = "pkg/kleboard/testdata/pad.net"
	simpleDoc      = `[[{"a":0},"Esc\n\n\n\n0\n0","Tab\n\n\n\n0\n1"]]`
)

func execute(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDecodeEncode(t *testing.T) {
	for _, format := range []string{formatJSON, formatYAML, formatMsgpack} {
		t.Run(format, func(t *testing.T) {
			expanded, err := execute(t, []byte(simpleDoc), "decode", "--format", format)
			require.NoError(t, err)

			compact, err := execute(t, []byte(expanded), "encode", "--format", format)
			require.NoError(t, err)
			assert.Equal(t, simpleDoc+"\n", compact)
		})
	}
}

func TestDecodeJSONShape(t *testing.T) {
	out, err := execute(t, []byte(simpleDoc), "decode")
	require.NoError(t, err)

	var kbd struct {
		Keys []struct {
			X      float64  `json:"x"`
			Labels []string `json:"labels"`
		} `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &kbd))
	require.Len(t, kbd.Keys, 2)
	assert.Equal(t, 1.0, kbd.Keys[1].X)
	assert.Equal(t, "Tab", kbd.Keys[1].Labels[0])
	assert.Equal(t, "1", kbd.Keys[1].Labels[11])
}

func TestDecodeRawData(t *testing.T) {
	out, err := execute(t, []byte(`[{a:0},"Esc\n\n\n\n0\n0","Tab\n\n\n\n0\n1"]`), "encode", "--format", "json")
	assert.Error(t, err, "raw data is not an expanded keyboard")
	assert.Empty(t, out)

	out, err = execute(t, []byte(`[{a:0},"Esc\n\n\n\n0\n0","Tab\n\n\n\n0\n1"]`), "roundtrip")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ok: 2 keys\n"))
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := execute(t, []byte(simpleDoc), "decode", "--format", "xml")
	assert.Error(t, err)
}

func TestRoundtrip(t *testing.T) {
	out, err := execute(t, nil, "roundtrip", padFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 5 keys, normalized\n")

	_, err = execute(t, nil, "roundtrip", "--exact", padFixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs from input")

	pretty := "[\n  [{\"a\": 0}, \"Esc\\n\\n\\n\\n0\\n0\",\n   \"Tab\\n\\n\\n\\n0\\n1\"]\n]\n"
	out, err = execute(t, []byte(pretty), "roundtrip", "--exact")
	require.NoError(t, err)
	assert.Equal(t, "ok: 2 keys, byte-identical\n"+simpleDoc+"\n", out)
}

func TestResolve(t *testing.T) {
	out, err := execute(t, nil, "resolve", padFixture)
	require.NoError(t, err)
	assert.Contains(t, out, `0\n3`)
	assert.NotContains(t, out, "Backspace")

	out, err = execute(t, nil, "resolve", "--select", "0", padFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "Backspace")
	assert.NotContains(t, out, `0\n3`)

	_, err = execute(t, nil, "resolve", "--select", "5", padFixture)
	var selErr *multilayout.SelectionError
	assert.ErrorAs(t, err, &selErr)

	_, err = execute(t, nil, "resolve", "--select", "x", padFixture)
	assert.Error(t, err)
}

func TestLayouts(t *testing.T) {
	out, err := execute(t, nil, "layouts", padFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "pad: 5 keys, 1 multilayout options")
	assert.Contains(t, out, "[0] Split Backspace")
	assert.Contains(t, out, "  0: 1 keys\n")
	assert.Contains(t, out, "  1: 2 keys (default)")
}

func TestGenerateAndImport(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, nil, "generate", "--out", dir, "--layout", "Stock=0", padFixture)
	require.NoError(t, err)

	for _, name := range []string{"info.json", "keyboard.h", "config.h", "vial.json", "keymaps/default/keymap.c", "keymaps/vial/config.h"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	info, err := os.ReadFile(filepath.Join(dir, "info.json"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "LAYOUT_stock")

	out, err := execute(t, nil, "import-via", filepath.Join(dir, "vial.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Split Backspace")

	_, err = execute(t, nil, "generate", "--out", dir, "--layout", "broken", padFixture)
	assert.Error(t, err)
}

func TestPins(t *testing.T) {
	out, err := execute(t, nil, "pins", "--mcu", "rp2040", netlistFixture)
	require.NoError(t, err)

	var pins struct {
		Cols []string `json:"cols"`
		Rows []string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &pins))
	assert.Equal(t, []string{"GP1", "GP2", "GP3", "GP4"}, pins.Cols)
	assert.Equal(t, []string{"GP0"}, pins.Rows)

	_, err = execute(t, nil, "pins")
	assert.Error(t, err)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kleboard.toml")
	_, err := execute(t, nil, "init-config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, nil, "init-config", path)
	assert.Error(t, err)

	_, err = execute(t, nil, "init-config", "--force", path)
	assert.NoError(t, err)
}

func TestParseSelections(t *testing.T) {
	sel, err := parseSelections("1, 0,2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, sel)

	_, err = parseSelections("1,,2")
	assert.Error(t, err)
}
