package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation       = "https://subwayline.dev/problems/validation-error"
	ProblemTypeInvalidSection   = "https://subwayline.dev/problems/invalid-section"
	ProblemTypeNotFound         = "https://subwayline.dev/problems/not-found"
	ProblemTypeConflict         = "https://subwayline.dev/problems/conflict"
	ProblemTypeUnsupportedMedia = "https://subwayline.dev/problems/unsupported-media-type"
	ProblemTypeTLSRequired      = "https://subwayline.dev/problems/tls-required"
	ProblemTypeTooManyRequests  = "https://subwayline.dev/problems/too-many-requests"
	ProblemTypeInternal         = "https://subwayline.dev/problems/internal-error"
	ProblemTypeUnavailable      = "https://subwayline.dev/problems/service-unavailable"
)

type problemKind struct {
	title  string
	status int
}

var problemKinds = map[string]problemKind{
	ProblemTypeValidation:       {"Validation error", http.StatusBadRequest},
	ProblemTypeInvalidSection:   {"Invalid section", http.StatusBadRequest},
	ProblemTypeNotFound:         {"Not found", http.StatusNotFound},
	ProblemTypeConflict:         {"Conflict", http.StatusConflict},
	ProblemTypeUnsupportedMedia: {"Unsupported media type", http.StatusUnsupportedMediaType},
	ProblemTypeTLSRequired:      {"TLS required", http.StatusForbidden},
	ProblemTypeTooManyRequests:  {"Too many requests", http.StatusTooManyRequests},
	ProblemTypeInternal:         {"Internal server error", http.StatusInternalServerError},
	ProblemTypeUnavailable:      {"Service unavailable", http.StatusServiceUnavailable},
}

// NewProblem creates a Problem with an explicit type, title and status.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// newKnown builds a problem of a registered type.
func newKnown(problemType, traceID, detail string) *Problem {
	kind := problemKinds[problemType]
	p := NewProblem(problemType, kind.title, kind.status, traceID)
	p.Detail = detail
	return p
}

// WithDetail sets the occurrence-specific explanation.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets the request path the problem occurred on.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write sends the problem with its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 problem carrying field errors.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return newKnown(ProblemTypeValidation, traceID, detail).WithErrors(errors)
}

// NewInvalidSection creates a 400 problem for a section the line cannot accept.
func NewInvalidSection(traceID, detail string) *Problem {
	return newKnown(ProblemTypeInvalidSection, traceID, detail)
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return newKnown(ProblemTypeNotFound, traceID, detail)
}

// NewConflict creates a 409 problem.
func NewConflict(traceID, detail string) *Problem {
	return newKnown(ProblemTypeConflict, traceID, detail)
}

// NewUnsupportedMediaType creates a 415 problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return newKnown(ProblemTypeUnsupportedMedia, traceID, detail)
}

// NewTLSRequired creates a 403 problem for plain HTTP requests.
func NewTLSRequired(traceID, detail string) *Problem {
	return newKnown(ProblemTypeTLSRequired, traceID, detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return newKnown(ProblemTypeTooManyRequests, traceID, detail)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return newKnown(ProblemTypeInternal, traceID, detail)
}

// NewServiceUnavailable creates a 503 problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return newKnown(ProblemTypeUnavailable, traceID, detail)
}
