package netlist

import (
	"codeberg.org/miketth/kleboard/pkg/qmk"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrMCUNotFound = errors.New("mcu not found in netlist")
	ErrRefNotFound = errors.New("mcu reference (eg. U2) not found in netlist")
)

var netSuffix = regexp.MustCompile(`(\d+)$`)

// FindMCU returns the first component whose value starts with the
// processor name. STM32 processors match any "stm32f" part.
func (n *Netlist) FindMCU(mcu qmk.MCU) (Component, error) {
	want := strings.ToLower(mcu.Processor)
	if strings.HasPrefix(want, "stm32") {
		want = "stm32f"
	}
	for _, c := range n.Components {
		if strings.HasPrefix(strings.ToLower(c.Value), want) {
			if c.Ref == "" {
				return Component{}, ErrRefNotFound
			}
			return c, nil
		}
	}
	return Component{}, fmt.Errorf("%w: %s", ErrMCUNotFound, mcu.Processor)
}

// MatrixPins maps the col* and row* nets attached to the MCU to firmware
// pin names, ordered by the number at the end of the net name. The pin
// name is whatever follows the schematic prefix: an optional port letter
// and the pin number (GPIO12 -> GP12, PF7 -> F7).
func (n *Netlist) MatrixPins(mcu qmk.MCU) (qmk.MatrixPins, error) {
	if !mcu.Known() {
		return qmk.MatrixPins{}, fmt.Errorf("%w: %q", qmk.ErrUnknownMCU, mcu.Preset)
	}
	comp, err := n.FindMCU(mcu)
	if err != nil {
		return qmk.MatrixPins{}, err
	}
	pinRe, err := regexp.Compile(regexp.QuoteMeta(mcu.SchematicPinPrefix) + `([A-Z]?\d+)`)
	if err != nil {
		return qmk.MatrixPins{}, fmt.Errorf("compile pin pattern: %w", err)
	}

	type pin struct {
		order int
		name  string
	}
	var cols, rows []pin

	for _, net := range n.Nets {
		name := strings.ToLower(strings.TrimPrefix(net.Name, "/"))
		var dst *[]pin
		switch {
		case strings.HasPrefix(name, "col"):
			dst = &cols
		case strings.HasPrefix(name, "row"):
			dst = &rows
		default:
			continue
		}

		order := -1
		if m := netSuffix.FindStringSubmatch(name); m != nil {
			order, _ = strconv.Atoi(m[1])
		}

		for _, node := range net.Nodes {
			if node.Ref != comp.Ref {
				continue
			}
			m := pinRe.FindStringSubmatch(node.PinFunction)
			if m == nil {
				return qmk.MatrixPins{}, fmt.Errorf("net %s: pin function %q has no %q pin number", net.Name, node.PinFunction, mcu.SchematicPinPrefix)
			}
			*dst = append(*dst, pin{order: order, name: mcu.OutputPinPrefix + m[1]})
		}
	}

	byOrder := func(a, b pin) int { return a.order - b.order }
	slices.SortStableFunc(cols, byOrder)
	slices.SortStableFunc(rows, byOrder)

	out := qmk.MatrixPins{Cols: []string{}, Rows: []string{}}
	for _, p := range cols {
		out.Cols = append(out.Cols, p.name)
	}
	for _, p := range rows {
		out.Rows = append(out.Rows, p.name)
	}
	return out, nil
}
