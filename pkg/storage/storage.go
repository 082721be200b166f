// Package storage persists per-user dashboard preferences.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// ErrNotFound is returned when a user has no stored preferences.
var ErrNotFound = errors.New("preferences not found")

// Database defines the interface for persisting preferences.
type Database interface {
	// GetPreferences returns the stored preferences and their schema version.
	// Returns ErrNotFound when the user has never saved preferences.
	GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error)
	SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error

	// ListUsers returns the ids of all users with stored preferences.
	ListUsers(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}

// Configured sets up the storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "sqlite", "Storage provider to use (available: firestore, sqlite, memory)")

	var p struct{ Database }

	fs := configuredFirestore()
	sq := configuredSQLite()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
			p.Database = fs
		case "sqlite":
			if err := sq.Init(); err != nil {
				panic(fmt.Sprintf("sqlite init failed: %v", err))
			}
			p.Database = sq
		case "memory":
			p.Database = NewMemory()
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
