package dashboard

import (
	"context"
	"sync"
)

// Store is where snapshots go and where remote cancel requests come from.
// Implementations are called from worker goroutines, never from the control
// loop.
type Store interface {
	// Publish replaces the published state with snap.
	Publish(ctx context.Context, snap Snapshot) error

	// CancelRequests removes and returns pending cancel requests, as command IDs.
	CancelRequests(ctx context.Context) ([]string, error)

	// RequestCancel asks the robot to cancel the command with the given ID.
	RequestCancel(ctx context.Context, id string) error
}

// MemoryStore keeps the latest snapshot in memory. It serves tests and runs
// without a Redis server.
type MemoryStore struct {
	mu        sync.Mutex
	latest    Snapshot
	published int
	cancels   []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Publish implements Store.
func (m *MemoryStore) Publish(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = snap
	m.published++
	return nil
}

// CancelRequests implements Store.
func (m *MemoryStore) CancelRequests(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.cancels
	m.cancels = nil
	return ids, nil
}

// RequestCancel implements Store.
func (m *MemoryStore) RequestCancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels = append(m.cancels, id)
	return nil
}

// Latest returns the last published snapshot and how many have been published.
func (m *MemoryStore) Latest() (Snapshot, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.published
}
