package via

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func key(x, y, w float64, labels map[int]string) kle.Key {
	k := kle.NewKey()
	k.X, k.Y, k.Width = x, y, w
	for slot, l := range labels {
		k.Labels[slot] = l
	}
	return k
}

func board() kle.Keyboard {
	kbd := kle.NewKeyboard()
	kbd.Meta.Name = "tiny"
	kbd.Meta.Author = "someone"
	kbd.Keys = []kle.Key{
		key(0, 0, 1, map[int]string{0: "Esc", 2: "u", 9: "0", 11: "0"}),
		key(1, 0, 1, map[int]string{0: "A", 3: "0", 5: "0", 9: "0", 11: "1"}),
		key(1, 0, 2, map[int]string{0: "Wide", 3: "0", 5: "1", 7: "Split", 9: "0", 11: "1"}),
		key(3, 0, 1, map[int]string{4: "e0"}),
	}
	return kbd
}

func TestBuildDefinition(t *testing.T) {
	def, err := BuildDefinition(board(), Options{VendorID: "0xFEED", ProductID: "0x0001"})
	require.NoError(t, err)

	assert.Equal(t, "tiny", def.Name)
	assert.Equal(t, "none", def.Lighting)
	assert.Equal(t, Matrix{Rows: 1, Cols: 2}, def.Matrix)
	assert.Equal(t, []multilayout.LayoutLabel{{Name: "Split"}}, def.Layouts.Labels)

	keymap, err := kle.Decode(def.Layouts.Keymap)
	require.NoError(t, err)
	assert.Equal(t, kle.NewMetadata(), keymap.Meta)
	require.Len(t, keymap.Keys, 4)

	assert.Equal(t, "0,0", keymap.Keys[0].Labels[kle.SlotLabel])
	assert.Empty(t, keymap.Keys[0].Labels[kle.SlotUnlock])
	assert.Equal(t, "0,1", keymap.Keys[1].Labels[kle.SlotLabel])
	assert.Equal(t, "0,0", keymap.Keys[1].Labels[kle.SlotLayoutTag])
	assert.Equal(t, "0,1", keymap.Keys[2].Labels[kle.SlotLayoutTag])
	assert.Equal(t, 2.0, keymap.Keys[2].Width)
	assert.Empty(t, keymap.Keys[2].Labels[kle.SlotLayoutName])
	assert.Equal(t, "e0", keymap.Keys[3].Labels[kle.SlotEncoder])
	assert.Empty(t, keymap.Keys[3].Labels[kle.SlotLabel])
}

func TestBuildDefinitionMissingPosition(t *testing.T) {
	kbd := board()
	kbd.Keys = append(kbd.Keys, key(5, 0, 1, map[int]string{0: "X"}))
	_, err := BuildDefinition(kbd, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matrix position")
}

func TestBuildDefinitionMissingName(t *testing.T) {
	kbd := board()
	kbd.Keys[2].Labels[kle.SlotLayoutName] = ""
	_, err := BuildDefinition(kbd, Options{})

	var missing *multilayout.MissingMultilayoutNameError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, missing.Index)
}

func TestDefinitionJSON(t *testing.T) {
	def, err := BuildDefinition(board(), Options{Name: "renamed", Lighting: "qmk_rgblight"})
	require.NoError(t, err)

	data, err := json.Marshal(def)
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, "renamed", obj["name"])
	assert.Equal(t, "qmk_rgblight", obj["lighting"])
	assert.NotContains(t, obj, "vendorId")
	layouts := obj["layouts"].(map[string]any)
	assert.Equal(t, []any{"Split"}, layouts["labels"])
}

func TestImportRoundTrip(t *testing.T) {
	def, err := BuildDefinition(board(), Options{})
	require.NoError(t, err)
	data, err := json.Marshal(def)
	require.NoError(t, err)

	kbd, err := Import(data)
	require.NoError(t, err)
	require.Len(t, kbd.Keys, 4)
	assert.Equal(t, "tiny", kbd.Meta.Name)

	assert.Equal(t, "0", kbd.Keys[0].Labels[kle.SlotRow])
	assert.Equal(t, "0", kbd.Keys[0].Labels[kle.SlotColumn])
	assert.Empty(t, kbd.Keys[0].Labels[kle.SlotLabel])

	assert.Equal(t, "0", kbd.Keys[1].Labels[kle.SlotLayoutIndex])
	assert.Equal(t, "0", kbd.Keys[1].Labels[kle.SlotLayoutValue])
	assert.Empty(t, kbd.Keys[1].Labels[kle.SlotLayoutName])

	assert.Equal(t, "1", kbd.Keys[2].Labels[kle.SlotLayoutValue])
	assert.Equal(t, "Split", kbd.Keys[2].Labels[kle.SlotLayoutName])
	assert.Equal(t, "e0", kbd.Keys[3].Labels[kle.SlotEncoder])

	labels, err := multilayout.Labels(kbd.Keys)
	require.NoError(t, err)
	assert.Equal(t, []multilayout.LayoutLabel{{Name: "Split"}}, labels)
}

func TestImportOptionNames(t *testing.T) {
	data := []byte(`{
		"name": "opts",
		"lighting": "none",
		"matrix": {"rows": 1, "cols": 1},
		"layouts": {
			"labels": [["Bottom Row", "ANSI", "ISO", "Tsangan"]],
			"keymap": [[{"w":2},"0,0\n\n\n0,0",{"x":-2},"0,0\n\n\n0,1",{"x":-1,"w":3},"0,0\n\n\n0,2",{"x":-3},"0,0\n\n\n0,2"]]
		}
	}`)
	kbd, err := Import(data)
	require.NoError(t, err)
	require.Len(t, kbd.Keys, 4)

	assert.Equal(t, "ANSI", kbd.Keys[0].Labels[kle.SlotLayoutOption])
	assert.Equal(t, "ISO", kbd.Keys[1].Labels[kle.SlotLayoutOption])
	assert.Equal(t, "Tsangan", kbd.Keys[2].Labels[kle.SlotLayoutOption])
	assert.Empty(t, kbd.Keys[3].Labels[kle.SlotLayoutOption])
	assert.Equal(t, "Bottom Row", kbd.Keys[2].Labels[kle.SlotLayoutName])
	assert.Empty(t, kbd.Keys[0].Labels[kle.SlotLayoutName])
}

func TestImportErrors(t *testing.T) {
	_, err := Import([]byte(`{`))
	assert.Error(t, err)

	_, err = Import([]byte(`{"layouts": {}}`))
	assert.Error(t, err)

	_, err = Import([]byte(`{"layouts": {"keymap": [["a,b"]]}}`))
	assert.Error(t, err)
}

func TestVialConfig(t *testing.T) {
	uid := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	out, err := VialConfig(board(), uid)
	require.NoError(t, err)
	assert.Contains(t, out, "#pragma once")
	assert.Contains(t, out, "#define VIAL_KEYBOARD_UID {0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}")
	assert.Contains(t, out, "#define VIAL_UNLOCK_COMBO_ROWS {0}\n#define VIAL_UNLOCK_COMBO_COLS {0}")
	assert.NotContains(t, out, "VIAL_INSECURE")

	kbd := board()
	kbd.Keys[0].Labels[kle.SlotUnlock] = ""
	out, err = VialConfig(kbd, uid)
	require.NoError(t, err)
	assert.Contains(t, out, "#define VIAL_INSECURE")
}
