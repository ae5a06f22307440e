package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/mcoot/clubdesk/internal/credential"
)

// MockHasher is a testify mock of credential.Hasher
type MockHasher struct {
	mock.Mock
}

// Ensure MockHasher implements Hasher
var _ credential.Hasher = (*MockHasher)(nil)

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, digest string) bool {
	args := m.Called(password, digest)
	return args.Bool(0)
}

func (m *MockHasher) NeedsRehash(digest string) bool {
	args := m.Called(digest)
	return args.Bool(0)
}
