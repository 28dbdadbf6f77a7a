package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/port"
	"ppm/internal/service"
)

// MockNegotiationService is a mock implementation of service.NegotiationService.
type MockNegotiationService struct {
	mock.Mock
}

func (m *MockNegotiationService) Negotiate(ctx context.Context, sessionID string, files []port.UploadFile) (*service.NegotiationResult, error) {
	args := m.Called(ctx, sessionID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NegotiationResult), args.Error(1)
}
