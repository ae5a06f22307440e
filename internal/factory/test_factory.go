package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clubdesk/internal/credential"
	"github.com/mcoot/clubdesk/internal/dependencies/mocks"
	"github.com/mcoot/clubdesk/internal/services/auth"
	"github.com/mcoot/clubdesk/internal/storage"
	"github.com/mcoot/clubdesk/internal/storage/memory"
	"github.com/mcoot/clubdesk/internal/testutil"
)

// TestTokenSecret signs session tokens in test apps
const TestTokenSecret = "clubdesk-test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an in-memory App with a mocked clock and the cheapest
// bcrypt cost
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage is NewTestApp over the given backend
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	authCfg := auth.Config{
		TokenSecret: []byte(TestTokenSecret),
		TokenTTL:    time.Hour,
	}

	app := newWithDependencies(store, mockClock, credential.Bcrypt{Cost: bcrypt.MinCost}, authCfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
