// Package line provides subway line management: the line aggregate, the
// section chain that keeps a line a single path, and its persistence.
package line

import "time"

// Line is a named subway route made of an ordered chain of sections.
type Line struct {
	ID        string
	Name      string
	Color     string
	Sections  *Sections
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLine creates a line seeded with one section.
func NewLine(id, name, color string, seed Section) *Line {
	now := time.Now()
	return &Line{
		ID:        id,
		Name:      name,
		Color:     color,
		Sections:  NewSections(seed),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSection inserts a section into the line's chain.
func (l *Line) AddSection(candidate Section) error {
	if err := l.Sections.Insert(candidate); err != nil {
		return err
	}
	l.UpdatedAt = time.Now()
	return nil
}

// Stations returns the line's stations from head to tail.
func (l *Line) Stations() ([]StationRef, error) {
	return l.Sections.Stations()
}

// Rename changes the line's name and color.
func (l *Line) Rename(name, color string) {
	l.Name = name
	l.Color = color
	l.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the line.
func (l *Line) Clone() *Line {
	cpy := *l
	if l.Sections != nil {
		cpy.Sections = l.Sections.Clone()
	}
	return &cpy
}
