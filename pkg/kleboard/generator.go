package kleboard

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"context"
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"os"
)

type Generator struct {
	renderers []Renderer
	layouts   LayoutStore
	sink      OutputSink
	log       *zap.SugaredLogger
}

func NewGenerator(
	renderers []Renderer,
	layouts LayoutStore,
	sink OutputSink,
	log *zap.SugaredLogger,
) *Generator {
	return &Generator{
		renderers: renderers,
		layouts:   layouts,
		sink:      sink,
		log:       log,
	}
}

// Generate runs every renderer concurrently and writes the results in
// renderer order. Nothing is written if any renderer fails.
func (g *Generator) Generate(ctx context.Context, kbd kle.Keyboard) error {
	alternates, err := g.layouts.GetLayouts()
	if err != nil {
		return fmt.Errorf("get layouts: %w", err)
	}
	in := Input{Keyboard: kbd, Alternates: alternates}

	results := make([][]File, len(g.renderers))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, r := range g.renderers {
		eg.Go(func() error {
			files, err := r.Render(egCtx, in)
			if err != nil {
				return fmt.Errorf("render %s: %w", r.Name(), err)
			}
			results[i] = files
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	written := 0
	for _, files := range results {
		for _, f := range files {
			if err := g.sink.Write(f); err != nil {
				return fmt.Errorf("write %s: %w", f.Name, err)
			}
			g.log.Debugw("wrote output", "file", f.Name, "bytes", len(f.Data))
			written++
		}
	}

	g.log.Infow("generated outputs", "keyboard", kbd.Meta.Name, "files", written, "layouts", len(alternates))
	return nil
}

// GenerateFile reads and decodes path, then generates.
func (g *Generator) GenerateFile(ctx context.Context, path string) error {
	kbd, err := LoadKeyboard(path)
	if err != nil {
		return err
	}
	return g.Generate(ctx, kbd)
}

// LoadKeyboard reads a KLE document or KLE raw data from path.
func LoadKeyboard(path string) (kle.Keyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kle.Keyboard{}, fmt.Errorf("read file: %w", err)
	}
	kbd, err := kle.Parse(data)
	if err != nil {
		return kle.Keyboard{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return kbd, nil
}
