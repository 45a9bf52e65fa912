package qmk

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"fmt"
	"strings"
)

const (
	rowLetters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnop"
	colLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

const headerSPDX = "/* SPDX-License-Identifier: GPL-2.0-or-later */\n\n"

// LayoutMacro renders keyboard.h with a LAYOUT macro for the canonical
// layout, mirroring what QMK generates from info.json.
func LayoutMacro(kbd kle.Keyboard) (string, error) {
	canonical, err := multilayout.ResolveCanonical(kbd)
	if err != nil {
		return "", fmt.Errorf("resolve layout: %w", err)
	}

	keys, err := switchKeys(canonical.Keys)
	if err != nil {
		return "", err
	}
	rows, cols, err := MatrixSize(keys)
	if err != nil {
		return "", fmt.Errorf("get matrix size: %w", err)
	}

	matrix := make([][]string, rows)
	for r := range matrix {
		matrix[r] = make([]string, cols)
		for c := range matrix[r] {
			matrix[r][c] = "XXX"
		}
	}

	var args []string
	for i, k := range keys {
		pos, ok, err := multilayout.ExtractRowCol(k)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("key %d at (%g, %g) has no matrix position", i, k.X, k.Y)
		}
		if pos.Row >= len(rowLetters) || pos.Col >= len(colLetters) {
			return "", fmt.Errorf("matrix data out of bounds for layout LAYOUT at index %d: %d, %d", i, pos.Row, pos.Col)
		}
		id := fmt.Sprintf("k%c%c", rowLetters[pos.Row], colLetters[pos.Col])
		matrix[pos.Row][pos.Col] = id
		args = append(args, id)
	}

	var b strings.Builder
	b.WriteString(headerSPDX)
	b.WriteString("#pragma once\n\n#include \"quantum.h\"\n\n#define XXX KC_NO\n\n")
	fmt.Fprintf(&b, "#define LAYOUT( \\\n\t%s \\\n) { \\\n", strings.Join(args, ", "))

	lines := make([]string, rows)
	for r, row := range matrix {
		lines[r] = "\t{" + strings.Join(row, ", ") + "}"
	}
	b.WriteString(strings.Join(lines, ", \\\n"))
	b.WriteString(" \\\n}\n")
	return b.String(), nil
}

// MainConfig renders the keyboard level config.h. The layer count is only
// written when it differs from VIA's default of 4.
func MainConfig(layers int) string {
	var b strings.Builder
	b.WriteString(headerSPDX)
	b.WriteString("#pragma once\n\n#include \"config_common.h\"\n\n")
	if layers != 4 && layers > 0 && layers <= 32 {
		fmt.Fprintf(&b, "#define DYNAMIC_KEYMAP_LAYER_COUNT %d\n", layers)
	} else {
		b.WriteString("/* This file is empty and unrequired */\n")
	}
	return b.String()
}
