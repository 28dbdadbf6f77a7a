package mocks

import (
	"github.com/stretchr/testify/mock"

	"ppm/internal/service"
)

// MockSessionTokenService is a mock implementation of service.SessionTokenService.
type MockSessionTokenService struct {
	mock.Mock
}

func (m *MockSessionTokenService) Issue() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockSessionTokenService) Validate(token string) (*service.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionClaims), args.Error(1)
}
