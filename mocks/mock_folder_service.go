package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/domain"
)

// MockFolderService is a mock implementation of service.FolderService.
type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) List(ctx context.Context, state, city string) (*domain.FolderListing, error) {
	args := m.Called(ctx, state, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FolderListing), args.Error(1)
}

func (m *MockFolderService) Open(ctx context.Context, sessionID string, route domain.Route) error {
	args := m.Called(ctx, sessionID, route)
	return args.Error(0)
}
