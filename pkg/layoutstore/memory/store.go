package memory

import (
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrEmptyName = errors.New("layout name is empty")

// LayoutStore keeps alternate layouts in insertion order, keyed by their
// normalised name.
type LayoutStore struct {
	lock    sync.Mutex
	layouts []multilayout.Alternate
	index   map[string]int
}

func NewLayoutStore(initial ...multilayout.Alternate) (*LayoutStore, error) {
	s := &LayoutStore{
		index: make(map[string]int),
	}
	for i, l := range initial {
		if err := s.SetLayout(l); err != nil {
			return nil, fmt.Errorf("add layout %d: %w", i, err)
		}
	}
	return s, nil
}

func (s *LayoutStore) GetLayouts() ([]multilayout.Alternate, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make([]multilayout.Alternate, len(s.layouts))
	for i, l := range s.layouts {
		out[i] = multilayout.Alternate{Name: l.Name, Selections: slices.Clone(l.Selections)}
	}
	return out, nil
}

// SetLayout adds layout or replaces the one with the same normalised name.
func (s *LayoutStore) SetLayout(layout multilayout.Alternate) error {
	key := multilayout.LayoutName(layout.Name)
	if key == "" {
		return ErrEmptyName
	}
	layout.Selections = slices.Clone(layout.Selections)

	s.lock.Lock()
	defer s.lock.Unlock()

	if i, ok := s.index[key]; ok {
		s.layouts[i] = layout
		return nil
	}
	s.index[key] = len(s.layouts)
	s.layouts = append(s.layouts, layout)
	return nil
}
