package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/port"
)

// MemoryAdapter is the in-process backend. Snapshots are kept encoded so
// callers never share memory with the stored copy.
type MemoryAdapter struct {
	mu       sync.Mutex
	snapshot []byte
	version  int64
	keys     map[string]time.Time
	now      func() time.Time
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemoryAdapter) Save(ctx context.Context, snap domain.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snapshot != nil && m.version > snap.Version {
		return port.ErrStaleSnapshot
	}
	m.snapshot = blob
	m.version = snap.Version
	return nil
}

func (m *MemoryAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	blob := m.snapshot
	m.mu.Unlock()

	if blob == nil {
		return nil, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (m *MemoryAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.keys[key]; ok && now.Before(expires) {
		return false, nil
	}
	m.keys[key] = now.Add(idempotencyKeyTTL)
	return true, nil
}
