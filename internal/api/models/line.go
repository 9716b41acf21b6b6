package models

// Line represents a subway line with its stations in travel order.
type Line struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Color     string        `json:"color"`
	Stations  []LineStation `json:"stations"`
	Distance  int           `json:"distance"`
	CreatedAt Timestamp     `json:"createdAt"`
	UpdatedAt Timestamp     `json:"updatedAt"`
}

// LineStation is a station as it appears on a line.
type LineStation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Section is the stretch of a line between two adjacent stations.
type Section struct {
	UpStation   LineStation `json:"upStation"`
	DownStation LineStation `json:"downStation"`
	Distance    int         `json:"distance"`
}

// LineCreateRequest represents a request to create a line with its first
// section.
type LineCreateRequest struct {
	Name          string `json:"name"`
	Color         string `json:"color"`
	UpStationID   string `json:"upStationId"`
	DownStationID string `json:"downStationId"`
	Distance      int    `json:"distance"`
}

// LineUpdateRequest represents a request to rename or recolor a line.
type LineUpdateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SectionCreateRequest represents a request to add a section to a line.
type SectionCreateRequest struct {
	UpStationID   string `json:"upStationId"`
	DownStationID string `json:"downStationId"`
	Distance      int    `json:"distance"`
}
