package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
	"ppm/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var rejected *domain.ServerRejectedError
	switch {
	case errors.As(err, &rejected):
		return http.StatusBadGateway, "SERVER_REJECTED", rejected.Message()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusBadRequest, "NO_FILES", "select at least one file"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrNoRoute):
		return http.StatusBadRequest, "NO_ROUTE", "no route selected"
	case errors.Is(err, domain.ErrInvalidPublicLocation):
		return http.StatusBadRequest, "INVALID_REQUEST", "public analysis location must be a relative path"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "INVALID_EMAIL", "invalid email address"
	case errors.Is(err, domain.ErrNegotiationInProgress):
		return http.StatusConflict, "ANALYSIS_IN_PROGRESS", "an analysis is already running for this session"
	case errors.Is(err, domain.ErrAnalysisUnavailable):
		return http.StatusServiceUnavailable, "ANALYSIS_UNAVAILABLE", "the analysis could not be started"
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return http.StatusBadGateway, "ANALYSIS_SERVICE_UNREACHABLE", "the analysis service is unreachable"
	case errors.Is(err, domain.ErrMalformedResult):
		return http.StatusBadGateway, "MALFORMED_RESULT", "the analysis service returned an unreadable result"
	case errors.Is(err, domain.ErrPreviewStorageDisabled):
		return http.StatusNotFound, "PREVIEW_UNAVAILABLE", "preview storage is not configured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		logrus.Errorf("[%v] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
