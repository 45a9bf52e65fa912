package kle

// props is a property-change object inside a row. Field order is the
// order the encoder writes them in; a nil field is absent.
type props struct {
	R  *float64 `json:"r,omitempty"`
	RX *float64 `json:"rx,omitempty"`
	RY *float64 `json:"ry,omitempty"`
	Y  *float64 `json:"y,omitempty"`
	X  *float64 `json:"x,omitempty"`
	C  *string  `json:"c,omitempty"`
	T  *string  `json:"t,omitempty"`
	G  *bool    `json:"g,omitempty"`
	P  *string  `json:"p,omitempty"`
	SM *string  `json:"sm,omitempty"`
	SB *string  `json:"sb,omitempty"`
	ST *string  `json:"st,omitempty"`
	A  *int     `json:"a,omitempty"`
	F  *int     `json:"f,omitempty"`
	F2 *int     `json:"f2,omitempty"`
	FA []int    `json:"fa,omitempty"`
	W  *float64 `json:"w,omitempty"`
	H  *float64 `json:"h,omitempty"`
	W2 *float64 `json:"w2,omitempty"`
	H2 *float64 `json:"h2,omitempty"`
	X2 *float64 `json:"x2,omitempty"`
	Y2 *float64 `json:"y2,omitempty"`
	N  *bool    `json:"n,omitempty"`
	L  *bool    `json:"l,omitempty"`
	D  *bool    `json:"d,omitempty"`
}

func (p props) rotates() bool {
	return p.R != nil || p.RX != nil || p.RY != nil
}

type metaProps struct {
	Author      *string     `json:"author,omitempty"`
	Backcolor   *string     `json:"backcolor,omitempty"`
	Background  *Background `json:"background,omitempty"`
	Name        *string     `json:"name,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
	Radii       *string     `json:"radii,omitempty"`
	SwitchBrand *string     `json:"switchBrand,omitempty"`
	SwitchMount *string     `json:"switchMount,omitempty"`
	SwitchType  *string     `json:"switchType,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}
