package netlist

import (
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func mustMCU(t *testing.T, name string) qmk.MCU {
	t.Helper()
	m, err := qmk.LookupMCU(name)
	require.NoError(t, err)
	return m
}

func TestParseSexpr(t *testing.T) {
	n, err := ParseFile("testdata/rp2040.net")
	require.NoError(t, err)

	require.Len(t, n.Components, 3)
	assert.Equal(t, Component{Ref: "U1", Value: "RP2040"}, n.Components[1])
	require.Len(t, n.Nets, 4)
	assert.Equal(t, "/col1", n.Nets[0].Name)
	assert.Equal(t, "1", n.Nets[0].Code)
	assert.Equal(t, Node{Ref: "U1", Pin: "4", PinFunction: "GPIO3"}, n.Nets[0].Nodes[1])
}

func TestParseXML(t *testing.T) {
	n, err := ParseFile("testdata/32u4.xml")
	require.NoError(t, err)

	require.Len(t, n.Components, 2)
	assert.Equal(t, Component{Ref: "U2", Value: "ATmega32U4-AU"}, n.Components[0])
	require.Len(t, n.Nets, 2)
	assert.Equal(t, Node{Ref: "U2", Pin: "36", PinFunction: "PF7"}, n.Nets[1].Nodes[0])
}

func TestParseUnquotedAtoms(t *testing.T) {
	n, err := Parse([]byte(`(export (version D) (components (comp (ref U3) (value STM32F072CBTx))) (nets (net (code 1) (name /row0) (node (ref U3) (pin 10) (pinfunction PA0)))))`))
	require.NoError(t, err)

	pins, err := n.MatrixPins(mustMCU(t, "STM32"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A0"}, pins.Rows)
	assert.Empty(t, pins.Cols)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"unknown":      "{}",
		"unbalanced":   "(export (components)",
		"stray close":  "(export))",
		"wrong root":   "(kicad_sch (version 1))",
		"unterminated": `(export (design "abc`,
		"bad xml":      "<export><nets>",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("   "))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseFile("testdata/missing.net")
	assert.Error(t, err)
}

func TestMatrixPinsRP2040(t *testing.T) {
	n, err := ParseFile("testdata/rp2040.net")
	require.NoError(t, err)

	pins, err := n.MatrixPins(mustMCU(t, "RP2040"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GP2", "GP3"}, pins.Cols)
	assert.Equal(t, []string{"GP1"}, pins.Rows)
}

func TestMatrixPins32U4(t *testing.T) {
	n, err := ParseFile("testdata/32u4.xml")
	require.NoError(t, err)

	pins, err := n.MatrixPins(mustMCU(t, "32u4"))
	require.NoError(t, err)
	assert.Equal(t, []string{"F7"}, pins.Cols)
	assert.Equal(t, []string{"B0"}, pins.Rows)
}

func TestMatrixPinsErrors(t *testing.T) {
	n, err := ParseFile("testdata/rp2040.net")
	require.NoError(t, err)

	_, err = n.MatrixPins(mustMCU(t, "None"))
	assert.True(t, errors.Is(err, qmk.ErrUnknownMCU))

	_, err = n.MatrixPins(mustMCU(t, "32U4"))
	assert.ErrorIs(t, err, ErrMCUNotFound)

	noRef := &Netlist{Components: []Component{{Value: "RP2040"}}}
	_, err = noRef.MatrixPins(mustMCU(t, "RP2040"))
	assert.ErrorIs(t, err, ErrRefNotFound)

	badPin := &Netlist{
		Components: []Component{{Ref: "U1", Value: "RP2040"}},
		Nets:       []Net{{Name: "/col0", Nodes: []Node{{Ref: "U1", PinFunction: "RUN"}}}},
	}
	_, err = badPin.MatrixPins(mustMCU(t, "RP2040"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"RUN"`)
}
