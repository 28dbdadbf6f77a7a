package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/service"
)

// MockViewerService is a mock implementation of service.ViewerService.
type MockViewerService struct {
	mock.Mock
}

func (m *MockViewerService) View(ctx context.Context, sessionID string) (*service.ViewerPage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ViewerPage), args.Error(1)
}

func (m *MockViewerService) SelectPublic(ctx context.Context, sessionID, location string) error {
	args := m.Called(ctx, sessionID, location)
	return args.Error(0)
}

func (m *MockViewerService) ClearSelection(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
