package line

// StationRef identifies a station as an endpoint of a section.
type StationRef struct {
	ID   string
	Name string
}

// Equal reports whether both references point at the same station.
func (s StationRef) Equal(other StationRef) bool {
	return s.ID == other.ID
}

// Section is a directed edge between two stations of a line.
type Section struct {
	Up       StationRef
	Down     StationRef
	Distance int
}

// NewSection creates a section after checking its invariants.
func NewSection(up, down StationRef, distance int) (Section, error) {
	if up.Equal(down) {
		return Section{}, ErrSameStations
	}
	if distance <= 0 {
		return Section{}, ErrInvalidDistance
	}
	return Section{Up: up, Down: down, Distance: distance}, nil
}

// SharesUp reports whether other starts at the same station as s.
func (s Section) SharesUp(other Section) bool {
	return s.Up.Equal(other.Up)
}

// SharesDown reports whether other ends at the same station as s.
func (s Section) SharesDown(other Section) bool {
	return s.Down.Equal(other.Down)
}

// SharesBoth reports whether other connects exactly the same stations as s.
func (s Section) SharesBoth(other Section) bool {
	return s.SharesUp(other) && s.SharesDown(other)
}

// IsUpstreamExtension reports whether other ends where s starts.
func (s Section) IsUpstreamExtension(other Section) bool {
	return s.Up.Equal(other.Down)
}

// IsDownstreamExtension reports whether other starts where s ends.
func (s Section) IsDownstreamExtension(other Section) bool {
	return s.Down.Equal(other.Up)
}

// ContainsNeither reports whether other touches none of the stations of s.
func (s Section) ContainsNeither(other Section) bool {
	return !s.has(other.Up) && !s.has(other.Down)
}

func (s Section) has(station StationRef) bool {
	return s.Up.Equal(station) || s.Down.Equal(station)
}

// Split breaks s at the far station of inserted, which must share either the
// up or the down station with s. The two returned sections cover the same
// span as s, in path order.
func (s Section) Split(inserted Section) ([2]Section, error) {
	if inserted.Distance >= s.Distance {
		return [2]Section{}, ErrDistanceTooLarge
	}
	remaining := s.Distance - inserted.Distance

	switch {
	case s.SharesUp(inserted):
		return [2]Section{
			inserted,
			{Up: inserted.Down, Down: s.Down, Distance: remaining},
		}, nil
	case s.SharesDown(inserted):
		return [2]Section{
			{Up: s.Up, Down: inserted.Up, Distance: remaining},
			inserted,
		}, nil
	default:
		return [2]Section{}, ErrInvalidSection
	}
}

// ExtendUp returns the section that prepends inserted before s.
func (s Section) ExtendUp(inserted Section) (Section, error) {
	if !s.IsUpstreamExtension(inserted) {
		return Section{}, ErrInvalidSection
	}
	return inserted, nil
}

// ExtendDown returns the section that appends inserted after s.
func (s Section) ExtendDown(inserted Section) (Section, error) {
	if !s.IsDownstreamExtension(inserted) {
		return Section{}, ErrInvalidSection
	}
	return inserted, nil
}
