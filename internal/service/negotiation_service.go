package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"ppm/internal/domain"
	"ppm/internal/fingerprint"
	"ppm/internal/port"
	"ppm/internal/session"
)

// NegotiationResult is the outcome of one negotiation.
type NegotiationResult struct {
	Decision    domain.Decision        `json:"decision"`
	Route       domain.Route           `json:"route"`
	Fingerprint domain.Fingerprint     `json:"fingerprint"`
	Saved       []string               `json:"saved,omitempty"`
	Analysis    *domain.AnalysisResult `json:"analysis,omitempty"`
}

// NegotiationService decides, for a file selection, whether a cached
// analysis can be reused, an analysis can be started for files the server
// already holds, or the files must be uploaded.
type NegotiationService interface {
	Negotiate(ctx context.Context, sessionID string, files []port.UploadFile) (*NegotiationResult, error)
}

type negotiationService struct {
	api      port.AnalysisAPI
	store    port.SessionStore
	inFlight sync.Map
}

// NewNegotiationService creates a new NegotiationService implementation.
func NewNegotiationService(api port.AnalysisAPI, store port.SessionStore) NegotiationService {
	return &negotiationService{api: api, store: store}
}

func (s *negotiationService) Negotiate(ctx context.Context, sessionID string, files []port.UploadFile) (*NegotiationResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	if _, running := s.inFlight.LoadOrStore(sessionID, struct{}{}); running {
		return nil, domain.ErrNegotiationInProgress
	}
	defer s.inFlight.Delete(sessionID)

	descriptors := make([]domain.FileDescriptor, len(files))
	for i, f := range files {
		descriptors[i] = f.Descriptor()
	}
	fp, err := fingerprint.Build(descriptors)
	if err != nil {
		return nil, err
	}

	result, err := s.negotiate(ctx, files, descriptors, fp)
	if err != nil {
		logrus.Errorf("negotiationService.Negotiate: session %s (fp %s): %v", sessionID, fp.Bucket, err)
		return nil, err
	}

	if err := s.persist(ctx, session.NewState(s.store, sessionID), files[0].Name, result); err != nil {
		return nil, err
	}
	logrus.Infof("negotiationService.Negotiate: session %s decided %s for route %s", sessionID, result.Decision, result.Route)
	return result, nil
}

func (s *negotiationService) negotiate(
	ctx context.Context,
	files []port.UploadFile,
	descriptors []domain.FileDescriptor,
	fp domain.Fingerprint,
) (*NegotiationResult, error) {
	pre, err := s.api.Preflight(ctx, port.PreflightRequest{Items: descriptors, ClientFP: fp.Value})
	if err != nil {
		logrus.Warnf("negotiationService.negotiate: preflight unavailable, uploading: %v", err)
		return s.upload(ctx, files, fp)
	}

	if !allExist(pre.Items, descriptors) {
		return s.upload(ctx, files, fp)
	}

	route := resolveRoute(pre, fp)
	if analysis := s.cachedAnalysis(ctx, pre, route); analysis != nil {
		return &NegotiationResult{Decision: domain.DecisionCacheHit, Route: route, Fingerprint: fp, Analysis: analysis}, nil
	}

	analysis, err := s.api.AnalyzeByRoute(ctx, route)
	if err != nil {
		return nil, err
	}
	return &NegotiationResult{Decision: domain.DecisionAnalyzedByRoute, Route: route, Fingerprint: fp, Analysis: analysis}, nil
}

func (s *negotiationService) upload(ctx context.Context, files []port.UploadFile, fp domain.Fingerprint) (*NegotiationResult, error) {
	resp, err := s.api.Upload(ctx, files, fp)
	if err != nil {
		return nil, err
	}

	route := resp.Route
	if route == "" {
		route = fingerprint.FallbackRoute(fp)
	}
	result := &NegotiationResult{
		Decision:    domain.DecisionUploaded,
		Route:       route,
		Fingerprint: fp,
		Saved:       resp.Saved,
	}
	if resp.Analysis != nil {
		result.Decision = domain.DecisionUploadedCached
		result.Analysis = resp.Analysis
	}
	return result, nil
}

// cachedAnalysis returns the cached analysis for route, or nil when the
// preflight reported no usable cache entry.
func (s *negotiationService) cachedAnalysis(ctx context.Context, pre *port.PreflightResponse, route domain.Route) *domain.AnalysisResult {
	if pre.CombinedCache {
		if pre.CombinedAnalysis != nil {
			return pre.CombinedAnalysis
		}
		entry := s.api.GetCacheByRoute(ctx, route)
		if entry.Exists && entry.Analysis != nil {
			return entry.Analysis
		}
		return nil
	}

	if len(pre.Items) == 1 && pre.Items[0].Analysis != nil {
		return pre.Items[0].Analysis
	}
	return nil
}

func (s *negotiationService) persist(ctx context.Context, state *session.State, fileName string, r *NegotiationResult) error {
	steps := []func() error{
		func() error { return state.SetRoute(ctx, r.Route) },
		func() error { return state.SetFingerprint(ctx, r.Fingerprint) },
		func() error { return state.SetFileName(ctx, fileName) },
		func() error { return state.SetSavedFiles(ctx, r.Saved) },
		func() error { return state.SetAnalysis(ctx, r.Analysis) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("persisting negotiation result: %w", err)
		}
	}
	return nil
}

// allExist reports whether the server holds every selected file. Each item
// must exist and match a selected name and size, and every selected file
// must be covered by an item.
func allExist(items []port.PreflightItem, selected []domain.FileDescriptor) bool {
	if len(items) == 0 {
		return false
	}
	wanted := make(map[domain.FileDescriptor]bool, len(selected))
	for _, d := range selected {
		wanted[d] = false
	}
	for _, it := range items {
		d := domain.FileDescriptor{Name: it.Name, Size: it.Size}
		if _, ok := wanted[d]; !ok || !it.Exists {
			return false
		}
		wanted[d] = true
	}
	for _, covered := range wanted {
		if !covered {
			return false
		}
	}
	return true
}

// resolveRoute picks the preflight route, then the route shared by all items,
// then the fingerprint fallback.
func resolveRoute(pre *port.PreflightResponse, fp domain.Fingerprint) domain.Route {
	if pre.Route != "" {
		return pre.Route
	}
	if len(pre.Items) > 0 {
		common := pre.Items[0].Route
		for _, it := range pre.Items[1:] {
			if it.Route != common {
				common = ""
				break
			}
		}
		if common != "" {
			return common
		}
	}
	return fingerprint.FallbackRoute(fp)
}
