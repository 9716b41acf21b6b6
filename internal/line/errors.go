package line

import "errors"

// Section insertion errors. They describe caller input that cannot be
// applied to the current state of a line and are never retryable.
var (
	// ErrDisconnectedSection is returned when neither station of a new
	// section is already on the line.
	ErrDisconnectedSection = errors.New("one of the up and down stations must already be on the line")

	// ErrDuplicateSection is returned when the line already connects both
	// stations of a new section.
	ErrDuplicateSection = errors.New("section is already registered on the line")

	// ErrStationsAlreadyOnLine is returned when both stations of a new
	// section are on the line but not as one section, for example a
	// reversed section. It matches ErrDuplicateSection under errors.Is.
	ErrStationsAlreadyOnLine error = &kindError{
		msg:  "up and down stations are both already on the line",
		kind: ErrDuplicateSection,
	}

	// ErrDistanceTooLarge is returned when a section that splits an existing
	// one is not strictly shorter than the section it splits.
	ErrDistanceTooLarge = errors.New("new section must be shorter than the section it splits")

	// ErrInvalidSection is returned when a section passes validation but
	// matches no insertion rule.
	ErrInvalidSection = errors.New("section cannot be added to the line")
)

// Section construction errors.
var (
	ErrSameStations    = errors.New("up and down stations must differ")
	ErrInvalidDistance = errors.New("distance must be greater than zero")
)

// ErrBrokenChain is returned when stored sections do not form a single path.
var ErrBrokenChain = errors.New("line sections do not form a single path")

// Repository errors.
var (
	ErrLineNotFound      = errors.New("line not found")
	ErrDuplicateLineName = errors.New("line name already exists")
)

// kindError carries its own message and unwraps to a broader sentinel.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
