package kle

import "strings"

// Label slot convention shared by the resolver and the firmware generators.
//
//	 0  1  2
//	 3  4  5
//	 6  7  8
//	 9 10 11
const (
	SlotLabel        = 0  // firmware label (info.json "label")
	SlotUnlock       = 2  // "u" marks a VIAL unlock-combo key
	SlotLayoutIndex  = 3  // multilayout index
	SlotEncoder      = 4  // "e" (VIAL) or "e<n>" (VIA) marks an encoder
	SlotLayoutValue  = 5  // multilayout value
	SlotLayoutOption = 6  // secondary multilayout (option) name
	SlotLayoutName   = 7  // primary multilayout name
	SlotLayoutTag    = 8  // "index,value" pair in VIA keymaps
	SlotRow          = 9  // matrix row
	SlotColumn       = 11 // matrix column
)

// IsEncoder reports whether the key carries an encoder marker.
func (k Key) IsEncoder() bool {
	l := k.Labels[SlotEncoder]
	if l == "e" {
		return true
	}
	return len(l) > 1 && l[0] == 'e' && isDigits(l[1:])
}

// IsVIALEncoder reports the bare "e" marker, whose encoder number lives in
// the row slot.
func (k Key) IsVIALEncoder() bool {
	return k.Labels[SlotEncoder] == "e"
}

// IsUnlock reports whether the key is part of the VIAL unlock combo.
func (k Key) IsUnlock() bool {
	return k.Labels[SlotUnlock] == "u"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}
