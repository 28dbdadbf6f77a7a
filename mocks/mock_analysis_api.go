package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/domain"
	"ppm/internal/port"
)

// MockAnalysisAPI is a mock implementation of port.AnalysisAPI.
type MockAnalysisAPI struct {
	mock.Mock
}

func (m *MockAnalysisAPI) Preflight(ctx context.Context, req port.PreflightRequest) (*port.PreflightResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PreflightResponse), args.Error(1)
}

func (m *MockAnalysisAPI) Upload(ctx context.Context, files []port.UploadFile, fp domain.Fingerprint) (*port.UploadResponse, error) {
	args := m.Called(ctx, files, fp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadResponse), args.Error(1)
}

func (m *MockAnalysisAPI) AnalyzeByRoute(ctx context.Context, route domain.Route) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, route)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisAPI) GetCacheByRoute(ctx context.Context, route domain.Route) *port.CacheEntry {
	args := m.Called(ctx, route)
	return args.Get(0).(*port.CacheEntry)
}

func (m *MockAnalysisAPI) ListFolders(ctx context.Context, state, city string) (*domain.FolderListing, error) {
	args := m.Called(ctx, state, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FolderListing), args.Error(1)
}

func (m *MockAnalysisAPI) FetchAnalysis(ctx context.Context, location string) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}
