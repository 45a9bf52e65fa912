package via

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"fmt"
	"github.com/google/uuid"
	"strings"
)

// VialConfig renders the keymap level config.h VIAL needs: the keyboard UID
// and the unlock combo taken from keys marked "u".
func VialConfig(kbd kle.Keyboard, uid uuid.UUID) (string, error) {
	var rows, cols []string
	for _, k := range kbd.Keys {
		if !k.IsUnlock() {
			continue
		}
		pos, ok, err := multilayout.ExtractRowCol(k)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("unlock key at (%g, %g) has no matrix position", k.X, k.Y)
		}
		rows = append(rows, fmt.Sprint(pos.Row))
		cols = append(cols, fmt.Sprint(pos.Col))
	}

	var b strings.Builder
	b.WriteString("/* SPDX-License-Identifier: GPL-2.0-or-later */\n\n#pragma once\n\n")
	b.WriteString(KeyboardUID(uid))
	if len(rows) > 0 {
		fmt.Fprintf(&b, "\n\n#define VIAL_UNLOCK_COMBO_ROWS {%s}\n#define VIAL_UNLOCK_COMBO_COLS {%s}",
			strings.Join(rows, ", "), strings.Join(cols, ", "))
	} else {
		b.WriteString("\n\n/* CONSIDER ADDING AN UNLOCK COMBO. SEE DOCUMENTATION. */\n#define VIAL_INSECURE")
	}
	b.WriteString("\n")
	return b.String(), nil
}

// KeyboardUID formats the first 8 bytes of uid as a VIAL_KEYBOARD_UID define.
func KeyboardUID(uid uuid.UUID) string {
	parts := make([]string, 8)
	for i := range parts {
		parts[i] = fmt.Sprintf("0x%02X", uid[i])
	}
	return fmt.Sprintf("#define VIAL_KEYBOARD_UID {%s}", strings.Join(parts, ", "))
}
