package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcoot/clubdesk/internal/storage"
)

// MockStorage is a testify mock of storage.Storage. Transact never calls
// fn; it returns whatever error the test configures.
type MockStorage struct {
	mock.Mock
}

// Ensure MockStorage implements Storage
var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Transact(ctx context.Context, fn func(tx storage.Tx) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
