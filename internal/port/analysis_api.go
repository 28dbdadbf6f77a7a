package port

import (
	"context"
	"io"

	"ppm/internal/domain"
)

// UploadFile is one selected file handed to the analysis service.
// Content is read once; callers rewind it before reuse.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.ReadSeeker
}

// Descriptor returns the name/size identity of the file.
func (f UploadFile) Descriptor() domain.FileDescriptor {
	return domain.FileDescriptor{Name: f.Name, Size: f.Size}
}

// PreflightRequest asks which of the selected files the server already holds.
type PreflightRequest struct {
	Items    []domain.FileDescriptor `json:"items"`
	ClientFP string                  `json:"client_fp"`
}

// PreflightItem is the server's view of one selected file.
type PreflightItem struct {
	Name     string
	Size     int64
	Exists   bool
	Route    domain.Route
	Cached   bool
	Analysis *domain.AnalysisResult
}

// PreflightResponse is the decoded answer of the preflight endpoint.
type PreflightResponse struct {
	Items            []PreflightItem
	Route            domain.Route
	CombinedCache    bool
	CombinedAnalysis *domain.AnalysisResult
}

// UploadResponse is the decoded answer of the upload endpoint.
type UploadResponse struct {
	Route    domain.Route
	Saved    []string
	Analysis *domain.AnalysisResult
}

// CacheEntry is the result of a cache lookup by route.
type CacheEntry struct {
	Exists   bool
	Analysis *domain.AnalysisResult
}

// AnalysisAPI abstracts the remote analysis service.
type AnalysisAPI interface {
	Preflight(ctx context.Context, req PreflightRequest) (*PreflightResponse, error)
	Upload(ctx context.Context, files []UploadFile, fp domain.Fingerprint) (*UploadResponse, error)
	AnalyzeByRoute(ctx context.Context, route domain.Route) (*domain.AnalysisResult, error)
	GetCacheByRoute(ctx context.Context, route domain.Route) *CacheEntry
	ListFolders(ctx context.Context, state, city string) (*domain.FolderListing, error)
	FetchAnalysis(ctx context.Context, location string) (*domain.AnalysisResult, error)
}
