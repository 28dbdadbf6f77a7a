package service

import (
	"context"
	"fmt"
	"strings"

	"ppm/internal/domain"
	"ppm/internal/port"
	"ppm/internal/session"
)

// FolderService lists public work items by location and opens one in the viewer.
type FolderService interface {
	List(ctx context.Context, state, city string) (*domain.FolderListing, error)
	Open(ctx context.Context, sessionID string, route domain.Route) error
}

type folderService struct {
	api   port.AnalysisAPI
	store port.SessionStore
}

// NewFolderService creates a new FolderService implementation.
func NewFolderService(api port.AnalysisAPI, store port.SessionStore) FolderService {
	return &folderService{api: api, store: store}
}

func (s *folderService) List(ctx context.Context, state, city string) (*domain.FolderListing, error) {
	state, city = strings.TrimSpace(state), strings.TrimSpace(city)
	if state == "" || city == "" {
		return nil, fmt.Errorf("state and city are required: %w", domain.ErrNotFound)
	}
	return s.api.ListFolders(ctx, state, city)
}

// Open points the session at route. The viewer resolves its analysis lazily.
func (s *folderService) Open(ctx context.Context, sessionID string, route domain.Route) error {
	if route == "" {
		return domain.ErrNoRoute
	}
	st := session.NewState(s.store, sessionID)
	if err := st.ClearSelection(ctx); err != nil {
		return err
	}
	if err := st.SetRoute(ctx, route); err != nil {
		return err
	}
	name := route.String()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return st.SetFileName(ctx, name)
}
