package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ppm/internal/domain"
	"ppm/internal/fingerprint"
	"ppm/internal/port"
	"ppm/internal/service"
	"ppm/internal/session"
	"ppm/mocks"
)

func twoFiles() []port.UploadFile {
	return []port.UploadFile{
		{Name: "b.pdf", Size: 100, ContentType: "application/pdf", Content: bytes.NewReader(make([]byte, 100))},
		{Name: "a.pdf", Size: 200, ContentType: "application/pdf", Content: bytes.NewReader(make([]byte, 200))},
	}
}

func existingItems(route domain.Route) []port.PreflightItem {
	return []port.PreflightItem{
		{Name: "a.pdf", Size: 200, Exists: true, Route: route},
		{Name: "b.pdf", Size: 100, Exists: true, Route: route},
	}
}

func sampleAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Summary:         &domain.Summary{ContractCost: 1000, MarketPrice: 1200, Difference: 200, DifferencePercent: 20, Credibility: 80},
		Alerts:          []string{},
		Recommendations: []string{},
		LineItems:       []domain.LineItem{},
	}
}

func expectedFingerprint(t *testing.T) domain.Fingerprint {
	t.Helper()
	fp, err := fingerprint.Build([]domain.FileDescriptor{{Name: "a.pdf", Size: 200}, {Name: "b.pdf", Size: 100}})
	require.NoError(t, err)
	return fp
}

func TestNegotiate_PreflightUnavailable_UploadsWithoutCacheOrAnalyze(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	svc := service.NewNegotiationService(api, store)
	fp := expectedFingerprint(t)

	api.On("Preflight", mock.Anything, port.PreflightRequest{
		Items:    []domain.FileDescriptor{{Name: "b.pdf", Size: 100}, {Name: "a.pdf", Size: 200}},
		ClientFP: fp.Value,
	}).Return(nil, fmt.Errorf("%w: dial tcp", domain.ErrNetworkUnavailable))
	api.On("Upload", mock.Anything, mock.Anything, fp).
		Return(&port.UploadResponse{Route: "temp/x/y", Saved: []string{"a.pdf", "b.pdf"}}, nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionUploaded, result.Decision)
	assert.Equal(t, domain.Route("temp/x/y"), result.Route)
	assert.Nil(t, result.Analysis)
	api.AssertNotCalled(t, "GetCacheByRoute", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)

	state := session.NewState(store, "s1")
	route, _ := state.Route(context.Background())
	saved, _ := state.SavedFiles(context.Background())
	name, _ := state.FileName(context.Background())
	assert.Equal(t, domain.Route("temp/x/y"), route)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, saved)
	assert.Equal(t, "b.pdf", name)
}

func TestNegotiate_AllExistWithCombinedCache_NoUploadNoAnalyze(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	svc := service.NewNegotiationService(api, store)
	cached := sampleAnalysis()

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
		Items:            existingItems("public/obra-1"),
		Route:            "public/obra-1",
		CombinedCache:    true,
		CombinedAnalysis: cached,
	}, nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionCacheHit, result.Decision)
	assert.Equal(t, domain.Route("public/obra-1"), result.Route)
	assert.Equal(t, cached, result.Analysis)
	api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)

	stored, err := session.NewState(store, "s1").Analysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, stored)
}

func TestNegotiate_CombinedCacheFlagOnly_FetchesByRoute(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())
	cached := sampleAnalysis()

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
		Items:         existingItems("r/1"),
		CombinedCache: true,
	}, nil)
	api.On("GetCacheByRoute", mock.Anything, domain.Route("r/1")).
		Return(&port.CacheEntry{Exists: true, Analysis: cached})

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionCacheHit, result.Decision)
	assert.Equal(t, domain.Route("r/1"), result.Route)
	api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)
}

func TestNegotiate_AllExistNoCache_AnalyzesExactlyOnce(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	svc := service.NewNegotiationService(api, store)
	fresh := sampleAnalysis()

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
		Items: existingItems(""),
		Route: "temp/abc/def",
	}, nil)
	api.On("AnalyzeByRoute", mock.Anything, domain.Route("temp/abc/def")).Return(fresh, nil).Once()

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionAnalyzedByRoute, result.Decision)
	assert.Equal(t, fresh, result.Analysis)
	api.AssertNumberOfCalls(t, "AnalyzeByRoute", 1)
	api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)

	stored, _ := session.NewState(store, "s1").Analysis(context.Background())
	assert.Equal(t, fresh, stored)
}

func TestNegotiate_CacheFlagMissFallsToAnalyze(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
		Items:         existingItems("r/1"),
		CombinedCache: true,
	}, nil)
	api.On("GetCacheByRoute", mock.Anything, domain.Route("r/1")).Return(&port.CacheEntry{})
	api.On("AnalyzeByRoute", mock.Anything, domain.Route("r/1")).Return(sampleAnalysis(), nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionAnalyzedByRoute, result.Decision)
}

func TestNegotiate_ItemCacheCountsForSingleFileOnly(t *testing.T) {
	t.Run("one file", func(t *testing.T) {
		api := new(mocks.MockAnalysisAPI)
		cached := sampleAnalysis()
		api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
			Items: []port.PreflightItem{{Name: "a.pdf", Size: 200, Exists: true, Route: "r/a", Cached: true, Analysis: cached}},
		}, nil)
		files := []port.UploadFile{{Name: "a.pdf", Size: 200, Content: bytes.NewReader(make([]byte, 200))}}

		result, err := service.NewNegotiationService(api, session.NewMemoryStore()).Negotiate(context.Background(), "s1", files)

		require.NoError(t, err)
		assert.Equal(t, domain.DecisionCacheHit, result.Decision)
		assert.Equal(t, cached, result.Analysis)
		api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)
	})

	t.Run("two files", func(t *testing.T) {
		api := new(mocks.MockAnalysisAPI)
		items := existingItems("r/1")
		for i := range items {
			items[i].Cached = true
			items[i].Analysis = sampleAnalysis()
		}
		api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{Items: items}, nil)
		api.On("AnalyzeByRoute", mock.Anything, domain.Route("r/1")).Return(sampleAnalysis(), nil).Once()

		result, err := service.NewNegotiationService(api, session.NewMemoryStore()).Negotiate(context.Background(), "s1", twoFiles())

		require.NoError(t, err)
		assert.Equal(t, domain.DecisionAnalyzedByRoute, result.Decision)
		api.AssertNumberOfCalls(t, "AnalyzeByRoute", 1)
		api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNegotiate_RouteFallsBackToFingerprint(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())
	fallback := fingerprint.FallbackRoute(expectedFingerprint(t))

	items := existingItems("")
	items[0].Route = "r/1"
	items[1].Route = "r/2"
	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{Items: items}, nil)
	api.On("AnalyzeByRoute", mock.Anything, fallback).Return(sampleAnalysis(), nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, fallback, result.Route)
}

func TestNegotiate_OneMissingItemForcesUpload(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())

	items := existingItems("r/1")
	items[1].Exists = false
	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{
		Items:            items,
		CombinedCache:    true,
		CombinedAnalysis: sampleAnalysis(),
	}, nil)
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).
		Return(&port.UploadResponse{Route: "temp/new", Analysis: sampleAnalysis()}, nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionUploadedCached, result.Decision)
	assert.Equal(t, domain.Route("temp/new"), result.Route)
	api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)
}

func TestNegotiate_MismatchedSizeForcesUpload(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())

	items := existingItems("r/1")
	items[0].Size = 999
	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{Items: items}, nil)
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(&port.UploadResponse{}, nil)

	result, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	require.NoError(t, err)
	assert.Equal(t, domain.DecisionUploaded, result.Decision)
	assert.Equal(t, fingerprint.FallbackRoute(expectedFingerprint(t)), result.Route)
}

func TestNegotiate_UploadWithoutAnalysisClearsPreviousAnalysis(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	svc := service.NewNegotiationService(api, store)
	state := session.NewState(store, "s1")
	require.NoError(t, state.SetAnalysis(context.Background(), sampleAnalysis()))

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{}, nil)
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(&port.UploadResponse{Route: "r"}, nil)

	_, err := svc.Negotiate(context.Background(), "s1", twoFiles())
	require.NoError(t, err)

	stored, err := state.Analysis(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestNegotiate_UploadRejected(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	svc := service.NewNegotiationService(api, store)
	rejected := &domain.ServerRejectedError{Operation: "upload", Status: 413, Detail: "file too large"}

	api.On("Preflight", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, rejected)

	_, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	assert.ErrorIs(t, err, domain.ErrServerRejected)
	assert.Equal(t, "file too large", domain.UserMessage(err))
	route, _ := session.NewState(store, "s1").Route(context.Background())
	assert.Empty(t, route)
}

func TestNegotiate_AnalyzeFailureSurfaces(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())

	api.On("Preflight", mock.Anything, mock.Anything).Return(&port.PreflightResponse{Items: existingItems("r/1")}, nil)
	api.On("AnalyzeByRoute", mock.Anything, domain.Route("r/1")).
		Return(nil, &domain.AnalysisUnavailableError{Route: "r/1"})

	_, err := svc.Negotiate(context.Background(), "s1", twoFiles())

	assert.ErrorIs(t, err, domain.ErrAnalysisUnavailable)
	api.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestNegotiate_NoFiles(t *testing.T) {
	svc := service.NewNegotiationService(new(mocks.MockAnalysisAPI), session.NewMemoryStore())

	_, err := svc.Negotiate(context.Background(), "s1", nil)

	assert.ErrorIs(t, err, domain.ErrNoFiles)
}

func TestNegotiate_ReentrantSessionRejected(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	svc := service.NewNegotiationService(api, session.NewMemoryStore())

	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("Preflight", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil, errors.New("offline")).Once()
	api.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(&port.UploadResponse{Route: "r"}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Negotiate(context.Background(), "s1", twoFiles())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := svc.Negotiate(context.Background(), "s1", twoFiles())
	assert.ErrorIs(t, err, domain.ErrNegotiationInProgress)

	close(release)
	wg.Wait()
}
