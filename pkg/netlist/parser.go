package netlist

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
)

var ErrUnknownFormat = errors.New("not a kicad netlist")

// ParseFile reads a KiCad netlist in either the s-expression (.net) or the
// XML (.xml) export format.
func ParseFile(path string) (*Netlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse detects the format from the first significant byte.
func Parse(data []byte) (*Netlist, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnknownFormat
	}

	switch trimmed[0] {
	case '(':
		return parseSexpr(trimmed)
	case '<':
		return parseXML(trimmed)
	default:
		return nil, ErrUnknownFormat
	}
}

func parseXML(data []byte) (*Netlist, error) {
	n := &Netlist{}
	err := xml.NewDecoder(bytes.NewReader(data)).Decode(n)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return n, nil
}

func parseSexpr(data []byte) (*Netlist, error) {
	root, err := readExpr(data)
	if err != nil {
		return nil, fmt.Errorf("decode s-expression: %w", err)
	}
	if root.head() != "export" {
		return nil, fmt.Errorf("%w: root is %q", ErrUnknownFormat, root.head())
	}

	n := &Netlist{}
	for _, comps := range root.all("components") {
		for _, c := range comps.all("comp") {
			n.Components = append(n.Components, Component{
				Ref:   c.value("ref"),
				Value: c.value("value"),
			})
		}
	}
	for _, nets := range root.all("nets") {
		for _, e := range nets.all("net") {
			net := Net{Code: e.value("code"), Name: e.value("name")}
			for _, node := range e.all("node") {
				net.Nodes = append(net.Nodes, Node{
					Ref:         node.value("ref"),
					Pin:         node.value("pin"),
					PinFunction: node.value("pinfunction"),
				})
			}
			n.Nets = append(n.Nets, net)
		}
	}
	return n, nil
}
