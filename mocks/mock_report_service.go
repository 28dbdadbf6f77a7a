package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Load(ctx context.Context, sessionID string) (*service.StoredReport, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredReport), args.Error(1)
}

func (m *MockReportService) Share(ctx context.Context, sessionID, toEmail string) error {
	args := m.Called(ctx, sessionID, toEmail)
	return args.Error(0)
}
