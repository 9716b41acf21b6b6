// Package station provides station management services.
package station

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrStationNotFound      = errors.New("station not found")
	ErrDuplicateStationName = errors.New("station name already exists")
)

// ErrStationInUse is returned when deleting a station that a line still uses.
var ErrStationInUse = errors.New("station is used by a line")

// Station is a stop that lines can connect.
type Station struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
