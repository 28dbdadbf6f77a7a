package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/port"
)

// MockReportMailer is a mock implementation of port.ReportMailer.
type MockReportMailer struct {
	mock.Mock
}

func (m *MockReportMailer) SendReport(ctx context.Context, email port.ReportEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
