package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNoFiles                = errors.New("no files selected")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrNegotiationInProgress  = errors.New("an analysis is already running for this session")
	ErrNetworkUnavailable     = errors.New("analysis service unreachable")
	ErrServerRejected         = errors.New("analysis service rejected the request")
	ErrAnalysisUnavailable    = errors.New("analysis unavailable")
	ErrMalformedResult        = errors.New("analysis result has no summary")
	ErrNoRoute                = errors.New("no route resolved for this session")
	ErrPreviewStorageDisabled = errors.New("preview storage is not configured")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidPublicLocation  = errors.New("public analysis location must be a path on the analysis service")
)

// ServerRejectedError is returned when the analysis service answers with a
// non-success status. Detail carries the server's own message when present.
type ServerRejectedError struct {
	Operation string
	Status    int
	Detail    string
}

func (e *ServerRejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Detail)
	}
	return fmt.Sprintf("%s failed: HTTP %d %s", e.Operation, e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match ErrServerRejected.
func (e *ServerRejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// Message returns the text shown to the user: the server detail, or the HTTP status.
func (e *ServerRejectedError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// AnalysisUnavailableError is returned when every analyze-by-route endpoint
// shape failed for a route.
type AnalysisUnavailableError struct {
	Route    Route
	Attempts []error
}

func (e *AnalysisUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("analysis unavailable for route %q after %d attempts: %s",
		e.Route, len(e.Attempts), strings.Join(parts, "; "))
}

// Is lets errors.Is match ErrAnalysisUnavailable.
func (e *AnalysisUnavailableError) Is(target error) bool {
	return target == ErrAnalysisUnavailable
}

// Unwrap exposes the individual attempt failures.
func (e *AnalysisUnavailableError) Unwrap() []error {
	return e.Attempts
}

// UserMessage returns the message surfaced to the user for err.
func UserMessage(err error) string {
	var rejected *ServerRejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected.Message()
	case errors.Is(err, ErrAnalysisUnavailable):
		return "The analysis could not be started. Please try again later."
	case errors.Is(err, ErrNetworkUnavailable):
		return "The analysis service is unreachable."
	case errors.Is(err, ErrNegotiationInProgress):
		return "An analysis is already running."
	case errors.Is(err, ErrNoFiles):
		return "Select at least one file."
	case errors.Is(err, ErrInvalidPublicLocation):
		return "The public analysis must be a path on the analysis service."
	case errors.Is(err, ErrFileTooLarge):
		return "The file exceeds the maximum allowed size."
	case errors.Is(err, ErrUnsupportedFileType):
		return "Unsupported file type; allowed: pdf, jpg, png."
	default:
		return "An unexpected error occurred."
	}
}
