package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/mindroll/internal/dependencies/mocks"
	"github.com/mcoot/mindroll/internal/services/auth"
	"github.com/mcoot/mindroll/internal/services/room"
	"github.com/mcoot/mindroll/internal/services/users"
	"github.com/mcoot/mindroll/internal/storage"
	"github.com/mcoot/mindroll/internal/storage/memory"
	"github.com/mcoot/mindroll/internal/testutil"
)

// TestAdmin is registered with the ADMIN role by test apps
const TestAdmin = "root"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App on in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates an App on the given storage with mocked dependencies
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte("test-secret")
	usersCfg := users.Config{
		AdminUsers: []string{TestAdmin},
		HashCost:   bcrypt.MinCost,
	}

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, usersCfg, room.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
