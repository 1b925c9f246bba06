// Package theme holds the fixed colour palettes and the current selection.
package theme

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownPalette is returned when selecting an id outside the palette list.
var ErrUnknownPalette = errors.New("unknown palette")

// Palette is one selectable display theme.
type Palette struct {
	ID    int    `json:"id"`
	Color string `json:"color"`
	Name  string `json:"name"`
}

// Palettes is the built-in palette list. The first entry is the fallback default.
var Palettes = []Palette{
	{ID: 1, Color: "#0d1282", Name: "blue-palette"},
	{ID: 2, Color: "#F5BD02", Name: "rose-palette"},
	{ID: 3, Color: "#90EE90", Name: "violet-palette"},
	{ID: 4, Color: "#333", Name: "black-palette"},
}

// Selector tracks the current palette. It is safe for concurrent use.
type Selector struct {
	mu       sync.RWMutex
	palettes []Palette
	current  Palette
}

// NewSelector creates a Selector over palettes, which must not be empty.
// The preferred id is used when it names a known palette, otherwise the
// first palette is current.
func NewSelector(palettes []Palette, preferred int) *Selector {
	s := &Selector{
		palettes: append([]Palette(nil), palettes...),
		current:  palettes[0],
	}
	if p, ok := s.find(preferred); ok {
		s.current = p
	}
	return s
}

func (s *Selector) find(id int) (Palette, bool) {
	for _, p := range s.palettes {
		if p.ID == id {
			return p, true
		}
	}
	return Palette{}, false
}

// Current returns the selected palette.
func (s *Selector) Current() Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// List returns a copy of the palette list.
func (s *Selector) List() []Palette {
	return append([]Palette(nil), s.palettes...)
}

// Select makes the palette with the given id current.
func (s *Selector) Select(id int) (Palette, error) {
	p, ok := s.find(id)
	if !ok {
		return Palette{}, fmt.Errorf("%w: %d", ErrUnknownPalette, id)
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p, nil
}
