// Package storagemock provides a testify mock of the storage.Database interface.
package storagemock

import (
	"context"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/stretchr/testify/mock"
)

// Database is a mock implementation of storage.Database.
type Database struct {
	mock.Mock
}

func (m *Database) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.Preferences), args.Int(1), args.Error(2)
}

func (m *Database) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	args := m.Called(ctx, userID, prefs, version)
	return args.Error(0)
}

func (m *Database) ListUsers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]string); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Database) Close() error {
	args := m.Called()
	return args.Error(0)
}
