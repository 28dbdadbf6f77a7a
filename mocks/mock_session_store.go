package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSessionStore is a mock implementation of port.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	args := m.Called(ctx, sessionID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockSessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	args := m.Called(ctx, sessionID, key, value)
	return args.Error(0)
}
