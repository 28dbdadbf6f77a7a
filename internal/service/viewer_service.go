package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
	"ppm/internal/port"
	"ppm/internal/session"
)

// AnalysisSource tells where the viewer's analysis came from.
type AnalysisSource string

const (
	SourceNone    AnalysisSource = ""
	SourceSession AnalysisSource = "session"
	SourceCache   AnalysisSource = "cache"
	SourceAnalyze AnalysisSource = "analyze"
	SourcePublic  AnalysisSource = "public"
)

// ViewerPage is everything the viewer page shows for one session.
type ViewerPage struct {
	Title      string                 `json:"title"`
	FileName   string                 `json:"file_name,omitempty"`
	Route      domain.Route           `json:"route,omitempty"`
	Preview    *domain.Preview        `json:"preview,omitempty"`
	PreviewURL string                 `json:"preview_url,omitempty"`
	InlinePDF  bool                   `json:"inline_pdf"`
	Analysis   *domain.AnalysisResult `json:"analysis,omitempty"`
	Source     AnalysisSource         `json:"source,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// ViewerService assembles the viewer page from session state.
type ViewerService interface {
	View(ctx context.Context, sessionID string) (*ViewerPage, error)
	SelectPublic(ctx context.Context, sessionID, location string) error
	ClearSelection(ctx context.Context, sessionID string) error
}

type viewerService struct {
	api           port.AnalysisAPI
	store         port.SessionStore
	previews      PreviewService
	defaultPublic string
}

// NewViewerService creates a new ViewerService. defaultPublic is the public
// analysis shown when a session has selected nothing.
func NewViewerService(api port.AnalysisAPI, store port.SessionStore, previews PreviewService, defaultPublic string) ViewerService {
	return &viewerService{api: api, store: store, previews: previews, defaultPublic: defaultPublic}
}

func (s *viewerService) View(ctx context.Context, sessionID string) (*ViewerPage, error) {
	state := session.NewState(s.store, sessionID)

	fileName, err := state.FileName(ctx)
	if err != nil {
		return nil, err
	}
	route, err := state.Route(ctx)
	if err != nil {
		return nil, err
	}

	page := &ViewerPage{Title: "Viewer", FileName: fileName, Route: route}
	if fileName != "" {
		page.Title = "Viewer - " + fileName
	}

	s.attachPreview(ctx, state, page)

	analysis, err := state.Analysis(ctx)
	if err != nil {
		logrus.Warnf("viewerService.View: discarding stored analysis for session %s: %v", sessionID, err)
		analysis = nil
	}
	if analysis != nil {
		page.Analysis, page.Source = analysis, SourceSession
		return page, nil
	}

	if route != "" {
		s.resolveByRoute(ctx, state, page)
		return page, nil
	}

	s.loadPublic(ctx, state, page)
	return page, nil
}

func (s *viewerService) attachPreview(ctx context.Context, state *session.State, page *ViewerPage) {
	preview, err := state.Preview(ctx)
	if err != nil || preview == nil {
		return
	}
	page.Preview = preview
	page.InlinePDF = preview.IsPDF()

	url, err := s.previews.URL(ctx, preview)
	if err != nil {
		logrus.Warnf("viewerService.attachPreview: %v", err)
		return
	}
	page.PreviewURL = url
}

// resolveByRoute looks the route up in the cache and falls back to starting
// an analysis. A successful result is written back to the session.
func (s *viewerService) resolveByRoute(ctx context.Context, state *session.State, page *ViewerPage) {
	var analysis *domain.AnalysisResult
	if entry := s.api.GetCacheByRoute(ctx, page.Route); entry.Exists && entry.Analysis != nil {
		analysis, page.Source = entry.Analysis, SourceCache
	} else {
		a, err := s.api.AnalyzeByRoute(ctx, page.Route)
		if err != nil {
			logrus.Errorf("viewerService.resolveByRoute: %s: %v", page.Route, err)
			page.Error = domain.UserMessage(err)
			return
		}
		analysis, page.Source = a, SourceAnalyze
	}

	page.Analysis = analysis
	if err := state.SetAnalysis(ctx, analysis); err != nil {
		logrus.Warnf("viewerService.resolveByRoute: persisting analysis: %v", err)
	}
}

func (s *viewerService) loadPublic(ctx context.Context, state *session.State, page *ViewerPage) {
	location, err := state.PublicAnalysis(ctx)
	if err != nil {
		logrus.Warnf("viewerService.loadPublic: %v", err)
	}
	if location != "" && domain.CheckPublicLocation(location) != nil {
		logrus.Warnf("viewerService.loadPublic: ignoring selected location %q", location)
		location = ""
	}
	if location == "" {
		location = s.defaultPublic
	}
	if location == "" {
		return
	}

	analysis, err := s.api.FetchAnalysis(ctx, location)
	if err != nil {
		logrus.Errorf("viewerService.loadPublic: %s: %v", location, err)
		page.Error = "Could not load the public analysis: " + domain.UserMessage(err)
		return
	}
	page.Analysis, page.Source = analysis, SourcePublic
}

func (s *viewerService) SelectPublic(ctx context.Context, sessionID, location string) error {
	if err := domain.CheckPublicLocation(location); err != nil {
		return err
	}
	return session.NewState(s.store, sessionID).SetPublicAnalysis(ctx, strings.TrimSpace(location))
}

// ClearSelection implements "change file": the selection, its preview and
// its analysis are forgotten.
func (s *viewerService) ClearSelection(ctx context.Context, sessionID string) error {
	if err := s.previews.Discard(ctx, sessionID); err != nil {
		return err
	}
	return session.NewState(s.store, sessionID).ClearSelection(ctx)
}
