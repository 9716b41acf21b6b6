package line

import "slices"

// Sections is the ordered chain of sections that makes up a line.
//
// The slice is kept in path order (head first) and the two indexes map a
// station ID to the position of the section starting or ending there. Every
// mutation builds a new slice and reindexes it, so a rejected insertion never
// touches the chain.
type Sections struct {
	items  []Section
	byUp   map[string]int
	byDown map[string]int
}

// NewSections creates a chain holding a single seed section.
func NewSections(seed Section) *Sections {
	s := &Sections{}
	s.reindex([]Section{seed})
	return s
}

// RestoreSections rebuilds a chain from stored sections in any order.
// Returns ErrBrokenChain if they do not form exactly one simple path.
func RestoreSections(items []Section) (*Sections, error) {
	if len(items) == 0 {
		return nil, ErrBrokenChain
	}

	byUp := make(map[string]Section, len(items))
	downs := make(map[string]struct{}, len(items))
	for _, sec := range items {
		if _, dup := byUp[sec.Up.ID]; dup {
			return nil, ErrBrokenChain
		}
		if _, dup := downs[sec.Down.ID]; dup {
			return nil, ErrBrokenChain
		}
		byUp[sec.Up.ID] = sec
		downs[sec.Down.ID] = struct{}{}
	}

	var heads []Section
	for _, sec := range items {
		if _, ok := downs[sec.Up.ID]; !ok {
			heads = append(heads, sec)
		}
	}
	if len(heads) != 1 {
		return nil, ErrBrokenChain
	}

	ordered := make([]Section, 0, len(items))
	for cur, ok := heads[0], true; ok; cur, ok = byUp[cur.Down.ID] {
		ordered = append(ordered, cur)
		if len(ordered) > len(items) {
			return nil, ErrBrokenChain
		}
	}
	if len(ordered) != len(items) {
		return nil, ErrBrokenChain
	}

	s := &Sections{}
	s.reindex(ordered)
	return s, nil
}

// Insert merges candidate into the chain.
//
// A candidate that starts or ends at the same station as an existing section
// splits that section. Otherwise it extends the chain before its head or after
// its tail. Validation completes before anything is changed.
func (s *Sections) Insert(candidate Section) error {
	if err := s.validate(candidate); err != nil {
		return err
	}

	if pos, ok := s.splitPosition(candidate); ok {
		parts, err := s.items[pos].Split(candidate)
		if err != nil {
			return err
		}
		s.reindex(slices.Replace(slices.Clone(s.items), pos, pos+1, parts[0], parts[1]))
		return nil
	}

	// The index lookups match the extension rule, so ExtendUp and ExtendDown cannot fail here.
	if pos, ok := s.byUp[candidate.Down.ID]; ok {
		head, err := s.items[pos].ExtendUp(candidate)
		if err != nil {
			return err
		}
		s.reindex(slices.Insert(slices.Clone(s.items), pos, head))
		return nil
	}

	if pos, ok := s.byDown[candidate.Up.ID]; ok {
		tail, err := s.items[pos].ExtendDown(candidate)
		if err != nil {
			return err
		}
		s.reindex(slices.Insert(slices.Clone(s.items), pos+1, tail))
		return nil
	}

	return ErrInvalidSection
}

func (s *Sections) validate(candidate Section) error {
	disconnected := true
	for _, sec := range s.items {
		if sec.SharesBoth(candidate) {
			return ErrDuplicateSection
		}
		if !sec.ContainsNeither(candidate) {
			disconnected = false
		}
	}
	if disconnected {
		return ErrDisconnectedSection
	}

	// Both stations already on the line would revisit a station.
	if s.Contains(candidate.Up.ID) && s.Contains(candidate.Down.ID) {
		return ErrStationsAlreadyOnLine
	}
	return nil
}

// splitPosition finds the section that candidate would split.
func (s *Sections) splitPosition(candidate Section) (int, bool) {
	if pos, ok := s.byUp[candidate.Up.ID]; ok {
		return pos, true
	}
	if pos, ok := s.byDown[candidate.Down.ID]; ok {
		return pos, true
	}
	return 0, false
}

// Stations returns the stations of the chain from head to tail.
func (s *Sections) Stations() ([]StationRef, error) {
	var head string
	heads := 0
	for id := range s.byUp {
		if _, ok := s.byDown[id]; !ok {
			head = id
			heads++
		}
	}
	if heads != 1 {
		return nil, ErrBrokenChain
	}

	pos := s.byUp[head]
	stations := make([]StationRef, 0, len(s.items)+1)
	stations = append(stations, s.items[pos].Up)
	for visited := 0; ; visited++ {
		if visited == len(s.items) {
			return nil, ErrBrokenChain
		}
		cur := s.items[pos]
		stations = append(stations, cur.Down)

		next, ok := s.byUp[cur.Down.ID]
		if !ok {
			break
		}
		pos = next
	}

	if len(stations) != len(s.items)+1 {
		return nil, ErrBrokenChain
	}
	return stations, nil
}

// Sections returns a copy of the sections in path order.
func (s *Sections) Sections() []Section {
	return slices.Clone(s.items)
}

// Len returns the number of sections.
func (s *Sections) Len() int {
	return len(s.items)
}

// TotalDistance returns the length of the whole chain.
func (s *Sections) TotalDistance() int {
	total := 0
	for _, sec := range s.items {
		total += sec.Distance
	}
	return total
}

// Contains reports whether the station is an endpoint of any section.
func (s *Sections) Contains(stationID string) bool {
	_, up := s.byUp[stationID]
	_, down := s.byDown[stationID]
	return up || down
}

// Clone returns an independent copy of the chain.
func (s *Sections) Clone() *Sections {
	cpy := &Sections{}
	cpy.reindex(slices.Clone(s.items))
	return cpy
}

func (s *Sections) reindex(items []Section) {
	byUp := make(map[string]int, len(items))
	byDown := make(map[string]int, len(items))
	for i, sec := range items {
		byUp[sec.Up.ID] = i
		byDown[sec.Down.ID] = i
	}
	s.items = items
	s.byUp = byUp
	s.byDown = byDown
}
