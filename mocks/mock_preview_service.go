package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/domain"
	"ppm/internal/port"
)

// MockPreviewService is a mock implementation of service.PreviewService.
type MockPreviewService struct {
	mock.Mock
}

func (m *MockPreviewService) Validate(files []port.UploadFile) error {
	args := m.Called(files)
	return args.Error(0)
}

func (m *MockPreviewService) Store(ctx context.Context, sessionID string, file port.UploadFile) (*domain.Preview, error) {
	args := m.Called(ctx, sessionID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preview), args.Error(1)
}

func (m *MockPreviewService) URL(ctx context.Context, p *domain.Preview) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockPreviewService) Discard(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
