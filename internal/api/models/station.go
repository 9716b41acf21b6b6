package models

// Station represents a subway station.
type Station struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"createdAt"`
}

// StationCreateRequest represents a request to register a station.
type StationCreateRequest struct {
	Name string `json:"name"`
}
