package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ppm/internal/apiclient"
	"ppm/internal/config"
	"ppm/internal/domain"
	"ppm/internal/port"
	"ppm/internal/service"
	"ppm/internal/session"
	"ppm/mocks"
)

var inlinePreviewCfg = &config.PreviewConfig{MaxFileSizeMB: 1, MaxInlineKB: 64}

func newViewer(api *mocks.MockAnalysisAPI, store port.SessionStore, defaultPublic string) service.ViewerService {
	previews := service.NewPreviewService(nil, store, inlinePreviewCfg)
	return service.NewViewerService(api, store, previews, defaultPublic)
}

func TestView_SessionAnalysis(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	state := session.NewState(store, "s1")
	require.NoError(t, state.SetFileName(ctx, "contract.pdf"))
	require.NoError(t, state.SetRoute(ctx, "r/1"))
	require.NoError(t, state.SetAnalysis(ctx, sampleAnalysis()))

	page, err := newViewer(api, store, "").View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, "Viewer - contract.pdf", page.Title)
	assert.Equal(t, service.SourceSession, page.Source)
	assert.Equal(t, sampleAnalysis(), page.Analysis)
	api.AssertNotCalled(t, "GetCacheByRoute", mock.Anything, mock.Anything)
}

func TestView_LazyCacheLookupByRoute(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	state := session.NewState(store, "s1")
	require.NoError(t, state.SetRoute(ctx, "r/1"))

	api.On("GetCacheByRoute", mock.Anything, domain.Route("r/1")).
		Return(&port.CacheEntry{Exists: true, Analysis: sampleAnalysis()})

	page, err := newViewer(api, store, "").View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, service.SourceCache, page.Source)
	assert.Equal(t, "Viewer", page.Title)
	api.AssertNotCalled(t, "AnalyzeByRoute", mock.Anything, mock.Anything)

	stored, _ := state.Analysis(ctx)
	assert.NotNil(t, stored)
}

func TestView_LazyAnalyzeAfterCacheMiss(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, session.NewState(store, "s1").SetRoute(ctx, "r/1"))

	api.On("GetCacheByRoute", mock.Anything, domain.Route("r/1")).Return(&port.CacheEntry{})
	api.On("AnalyzeByRoute", mock.Anything, domain.Route("r/1")).Return(sampleAnalysis(), nil)

	page, err := newViewer(api, store, "").View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, service.SourceAnalyze, page.Source)
}

func TestView_AnalyzeFailureIsShownNotReturned(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, session.NewState(store, "s1").SetRoute(ctx, "r/1"))

	api.On("GetCacheByRoute", mock.Anything, mock.Anything).Return(&port.CacheEntry{})
	api.On("AnalyzeByRoute", mock.Anything, mock.Anything).
		Return(nil, &domain.AnalysisUnavailableError{Route: "r/1"})

	page, err := newViewer(api, store, "").View(ctx, "s1")

	require.NoError(t, err)
	assert.Nil(t, page.Analysis)
	assert.NotEmpty(t, page.Error)
}

func TestView_PublicFallback(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()

	api.On("FetchAnalysis", mock.Anything, "data/ejemplo_analisis.json").Return(sampleAnalysis(), nil)

	page, err := newViewer(api, store, "data/ejemplo_analisis.json").View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, service.SourcePublic, page.Source)
}

func TestView_SelectedPublicWinsOverDefault(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	viewer := newViewer(api, store, "data/default.json")
	require.NoError(t, viewer.SelectPublic(ctx, "s1", "data/jalisco.json"))

	api.On("FetchAnalysis", mock.Anything, "data/jalisco.json").Return(nil, errors.New("404"))

	page, err := viewer.View(ctx, "s1")

	require.NoError(t, err)
	assert.Nil(t, page.Analysis)
	assert.True(t, strings.HasPrefix(page.Error, "Could not load the public analysis"))
}

func TestSelectPublic_RejectsAbsoluteLocations(t *testing.T) {
	var internalHits int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&internalHits, 1)
		_, _ = w.Write([]byte(`{"summary":{"contractCost":1}}`))
	}))
	defer internal.Close()
	apiServer := httptest.NewServer(http.NotFoundHandler())
	defer apiServer.Close()

	store := session.NewMemoryStore()
	ctx := context.Background()
	api := apiclient.NewClientWithHTTP(apiServer.URL, &http.Client{Timeout: 5 * time.Second}, 1)
	previews := service.NewPreviewService(nil, store, inlinePreviewCfg)
	viewer := service.NewViewerService(api, store, previews, "")

	err := viewer.SelectPublic(ctx, "s1", internal.URL+"/latest/meta-data")
	require.ErrorIs(t, err, domain.ErrInvalidPublicLocation)

	stored, _ := session.NewState(store, "s1").PublicAnalysis(ctx)
	assert.Empty(t, stored)

	page, err := viewer.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, service.SourceNone, page.Source)
	assert.Equal(t, int32(0), atomic.LoadInt32(&internalHits))
}

func TestView_IgnoresStoredAbsoluteLocation(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, session.NewState(store, "s1").SetPublicAnalysis(ctx, "http://10.0.0.5/secrets"))
	api.On("FetchAnalysis", mock.Anything, "data/default.json").Return(sampleAnalysis(), nil)

	page, err := newViewer(api, store, "data/default.json").View(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, service.SourcePublic, page.Source)
	api.AssertNotCalled(t, "FetchAnalysis", mock.Anything, "http://10.0.0.5/secrets")
}

func TestView_NothingLoaded(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)

	page, err := newViewer(api, session.NewMemoryStore(), "").View(context.Background(), "s1")

	require.NoError(t, err)
	assert.Nil(t, page.Analysis)
	assert.Empty(t, page.Error)
	assert.Equal(t, service.SourceNone, page.Source)
}

func TestView_InlinePDFPreview(t *testing.T) {
	api := new(mocks.MockAnalysisAPI)
	store := session.NewMemoryStore()
	ctx := context.Background()
	previews := service.NewPreviewService(nil, store, inlinePreviewCfg)
	_, err := previews.Store(ctx, "s1", port.UploadFile{
		Name: "contract.pdf", Size: 4, ContentType: "application/pdf", Content: bytes.NewReader([]byte("%PDF")),
	})
	require.NoError(t, err)
	require.NoError(t, session.NewState(store, "s1").SetAnalysis(ctx, sampleAnalysis()))

	page, err := service.NewViewerService(api, store, previews, "").View(ctx, "s1")

	require.NoError(t, err)
	assert.True(t, page.InlinePDF)
	assert.Equal(t, "data:application/pdf;base64,JVBERg==", page.PreviewURL)
}

func TestClearSelection(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	state := session.NewState(store, "s1")
	require.NoError(t, state.SetRoute(ctx, "r/1"))
	require.NoError(t, state.SetPreview(ctx, &domain.Preview{FileName: "a.png"}))

	require.NoError(t, newViewer(new(mocks.MockAnalysisAPI), store, "").ClearSelection(ctx, "s1"))

	route, _ := state.Route(ctx)
	preview, _ := state.Preview(ctx)
	assert.Empty(t, route)
	assert.Nil(t, preview)
}
