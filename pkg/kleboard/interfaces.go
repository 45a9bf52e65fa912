package kleboard

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"context"
)

// Renderer produces one or more output files from a decoded keyboard. It
// must not modify the input.
type Renderer interface {
	Name() string
	Render(ctx context.Context, in Input) ([]File, error)
}

type OutputSink interface {
	Write(f File) error
}

// LayoutStore holds the named alternate layouts rendered next to the
// canonical one.
type LayoutStore interface {
	GetLayouts() ([]multilayout.Alternate, error)
	SetLayout(layout multilayout.Alternate) error
}

type Input struct {
	Keyboard   kle.Keyboard
	Alternates []multilayout.Alternate
}

// File is a rendered output. Name is relative to the output directory.
type File struct {
	Name string
	Data []byte
}
