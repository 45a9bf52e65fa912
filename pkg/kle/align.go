package kle

// labelMap[a][s] is the canonical slot stored at serialized position s when
// the alignment is a, or -1 if a cannot represent position s.
var labelMap = [8][LabelCount]int{
	{0, 6, 2, 8, 9, 11, 3, 5, 1, 4, 7, 10},
	{1, 7, -1, -1, 9, 11, 4, -1, -1, -1, -1, 10},
	{3, -1, 5, -1, 9, 11, -1, -1, 4, -1, -1, 10},
	{4, -1, -1, -1, 9, 11, -1, -1, -1, -1, -1, 10},
	{0, 6, 2, 8, 10, -1, 3, 5, 1, 4, 7, -1},
	{1, 7, -1, -1, 10, -1, 4, -1, -1, -1, -1, -1},
	{3, -1, 5, -1, 10, -1, -1, -1, 4, -1, -1, -1},
	{4, -1, -1, -1, 10, -1, -1, -1, -1, -1, -1, -1},
}

// disallowedAlignments[slot] lists the alignments that cannot hold a label
// in slot.
var disallowedAlignments = [LabelCount][]int{
	{1, 2, 3, 5, 6, 7},
	{2, 3, 6, 7},
	{1, 2, 3, 5, 6, 7},
	{1, 3, 5, 7},
	{},
	{1, 3, 5, 7},
	{1, 2, 3, 5, 6, 7},
	{2, 3, 6, 7},
	{1, 2, 3, 5, 6, 7},
	{4, 5, 6, 7},
	{},
	{4, 5, 6, 7},
}

var alignmentPreference = [8]int{7, 5, 6, 4, 3, 1, 2, 0}

// chooseAlignment picks the first alignment in preference order that can
// represent every populated slot. Alignment 0 represents everything.
func chooseAlignment(labels [LabelCount]string) int {
	var excluded [8]bool
	for slot, l := range labels {
		if l == "" {
			continue
		}
		for _, a := range disallowedAlignments[slot] {
			excluded[a] = true
		}
	}
	for _, a := range alignmentPreference {
		if !excluded[a] {
			return a
		}
	}
	return 0
}

// serializedPosition is the inverse of labelMap for one alignment.
func serializedPosition(align, slot int) int {
	for pos, s := range labelMap[align] {
		if s == slot {
			return pos
		}
	}
	return -1
}

func validAlignment(a int) bool {
	return a >= 0 && a < len(labelMap)
}
