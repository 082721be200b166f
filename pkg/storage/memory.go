package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/gridscope/gridscope/pkg/types"
)

type memoryRecord struct {
	prefs   types.Preferences
	version int
}

// Memory is an in-memory Database used for tests and dev mode.
type Memory struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
}

// NewMemory creates an empty in-memory database.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]memoryRecord)}
}

func (m *Memory) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[userID]
	if !ok {
		return types.Preferences{}, 0, ErrNotFound
	}
	return rec.prefs, rec.version, nil
}

func (m *Memory) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = memoryRecord{prefs: prefs, version: version}
	return nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userIDs := make([]string, 0, len(m.records))
	for id := range m.records {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	return userIDs, nil
}

func (m *Memory) Close() error {
	return nil
}
