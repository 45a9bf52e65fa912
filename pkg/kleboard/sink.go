package kleboard

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes outputs below a directory.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (s *DirSink) Write(f File) error {
	if !filepath.IsLocal(f.Name) {
		return fmt.Errorf("output name %q escapes %s", f.Name, s.dir)
	}
	path := filepath.Join(s.dir, f.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, f.Data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
