package qmk

import (
	"bufio"
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"encoding/json"
	"fmt"
	"strings"
)

// Keycode is a QMK keycode name. Saved layouts store some entries as
// numbers; -1 marks an unused position.
type Keycode string

func (k *Keycode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = Keycode(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("keycode is neither a string nor a number: %s", data)
	}
	if n < 0 {
		*k = "KC_NO"
		return nil
	}
	*k = Keycode(fmt.Sprintf("0x%04X", n))
	return nil
}

// ParseKeycodeAliases reads the keycode tables of QMK's keycodes.md and maps
// every long keycode name to its first alias.
func ParseKeycodeAliases(md string) map[string]string {
	out := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		cells := strings.Split(sc.Text(), "|")
		if len(cells) <= 3 {
			continue
		}
		key := strings.TrimSpace(cells[1])
		aliases := strings.TrimSpace(cells[2])
		if !quoted(key) || !quoted(aliases) {
			continue
		}
		alias, _, _ := strings.Cut(aliases, ", ")
		out[strings.Trim(key, "`")] = strings.Trim(alias, "`")
	}
	return out
}

// ParseConversions reads "OLD NEW" pairs, one per line, used to update
// deprecated keycodes found in saved VIAL layouts.
func ParseConversions(text string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out[fields[0]] = fields[1]
	}
	return out
}

func quoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`")
}

// commonLegends maps the printed legend of common keys to their keycode.
// Shifted legends are written "shifted\nunshifted" as they appear in the top
// and bottom left label slots.
var commonLegends = map[string]string{
	"esc": "KC_ESC", "escape": "KC_ESC",
	"~\n`": "KC_GRV", "!\n1": "KC_1", "@\n2": "KC_2", "#\n3": "KC_3",
	"$\n4": "KC_4", "%\n5": "KC_5", "^\n6": "KC_6", "&\n7": "KC_7",
	"*\n8": "KC_8", "(\n9": "KC_9", ")\n0": "KC_0", "_\n-": "KC_MINS",
	"+\n=": "KC_EQL", "{\n[": "KC_LBRC", "}\n]": "KC_RBRC", "|\n\\": "KC_BSLS",
	":\n;": "KC_SCLN", "\"\n'": "KC_QUOT", "<\n,": "KC_COMM", ">\n.": "KC_DOT",
	"?\n/": "KC_SLSH",
	"backspace": "KC_BSPC", "tab": "KC_TAB", "caps lock": "KC_CAPS",
	"enter": "KC_ENT", "return": "KC_ENT", "shift": "KC_LSFT",
	"ctrl": "KC_LCTL", "control": "KC_LCTL", "win": "KC_LGUI",
	"super": "KC_LGUI", "cmd": "KC_LGUI", "alt": "KC_LALT", "menu": "KC_APP",
	"fn": "MO(1)", "space": "KC_SPC", "": "KC_SPC",
	"insert": "KC_INS", "ins": "KC_INS", "delete": "KC_DEL", "del": "KC_DEL",
	"home": "KC_HOME", "end": "KC_END", "pgup": "KC_PGUP", "pgdn": "KC_PGDN",
	"page up": "KC_PGUP", "page down": "KC_PGDN",
	"↑": "KC_UP", "↓": "KC_DOWN", "←": "KC_LEFT", "→": "KC_RGHT",
	"prtsc": "KC_PSCR", "print screen": "KC_PSCR", "scroll lock": "KC_SCRL",
	"pause": "KC_PAUS", "num lock": "KC_NUM",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		commonLegends[string(c)] = "KC_" + strings.ToUpper(string(c))
	}
	for i := 1; i <= 24; i++ {
		commonLegends[fmt.Sprintf("f%d", i)] = fmt.Sprintf("KC_F%d", i)
	}
}

// LegendKeycode guesses a keycode from the printed legends of k. A blank
// key at least 3u wide is taken to be the space bar.
func LegendKeycode(k kle.Key) (string, bool) {
	for _, slot := range []int{1, kle.SlotEncoder, kle.SlotLayoutTag, 10} {
		if k.Labels[slot] != "" {
			return "", false
		}
	}
	legend := k.Labels[kle.SlotLabel]
	if bottom := k.Labels[kle.SlotLayoutOption]; bottom != "" && !multilayout.IsTagged(k) {
		legend += "\n" + bottom
	}
	if legend == "" && k.Width < 3 {
		return "", false
	}
	kc, ok := commonLegends[strings.ToLower(legend)]
	return kc, ok
}
