package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ppm/internal/port"
)

// MockPreviewStorage is a mock implementation of port.PreviewStorage.
type MockPreviewStorage struct {
	mock.Mock
}

func (m *MockPreviewStorage) Put(ctx context.Context, obj port.PreviewObject) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *MockPreviewStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockPreviewStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
