package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppm/internal/domain"
	"ppm/internal/handler"
	"ppm/internal/middleware"
	"ppm/internal/render"
)

const testSessionID = "s1"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine returns an engine with the page templates and a fixed session.
func newEngine() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(render.Templates())
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeySessionID, testSessionID)
		c.Next()
	})
	return r
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func sampleAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Summary: &domain.Summary{ContractCost: 1000, MarketPrice: 1200, Difference: 200, DifferencePercent: 20, Credibility: 80},
		Alerts:  []string{"<b>Overpriced</b> cement"},
		LineItems: []domain.LineItem{
			{Concept: "Cement", Unit: "t", Quantity: 2, ContractCost: 600, MarketPrice: 500, Difference: 100, DifferencePercent: 20},
		},
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no files", domain.ErrNoFiles, http.StatusBadRequest, "NO_FILES"},
		{"unsupported", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"in progress", domain.ErrNegotiationInProgress, http.StatusConflict, "ANALYSIS_IN_PROGRESS"},
		{"invalid email", domain.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
		{"public location", domain.ErrInvalidPublicLocation, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unreachable", domain.ErrNetworkUnavailable, http.StatusBadGateway, "ANALYSIS_SERVICE_UNREACHABLE"},
		{"unavailable", &domain.AnalysisUnavailableError{Route: "r"}, http.StatusServiceUnavailable, "ANALYSIS_UNAVAILABLE"},
		{"rejected", &domain.ServerRejectedError{Operation: "upload", Status: 500, Detail: "disk full"}, http.StatusBadGateway, "SERVER_REJECTED"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}

	_, _, msg := handler.MapDomainError(&domain.ServerRejectedError{Operation: "upload", Status: 500, Detail: "disk full"})
	assert.Equal(t, "disk full", msg)
}

func TestHealth_NoDatabase(t *testing.T) {
	h := handler.NewHealthHandler(nil)
	r := gin.New()
	r.GET("/readyz", h.Readiness)
	r.GET("/healthz", h.Liveness)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
