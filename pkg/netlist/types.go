package netlist

import "encoding/xml"

// Netlist is the subset of a KiCad netlist export needed to find the
// switch matrix pins. The xml tags follow the intermediate XML format; the
// s-expression parser fills the same structure.
type Netlist struct {
	XMLName    xml.Name    `xml:"export"`
	Components []Component `xml:"components>comp"`
	Nets       []Net       `xml:"nets>net"`
}

type Component struct {
	Ref   string `xml:"ref,attr"`
	Value string `xml:"value"`
}

type Net struct {
	Code  string `xml:"code,attr"`
	Name  string `xml:"name,attr"`
	Nodes []Node `xml:"node"`
}

type Node struct {
	Ref         string `xml:"ref,attr"`
	Pin         string `xml:"pin,attr"`
	PinFunction string `xml:"pinfunction,attr"`
}
