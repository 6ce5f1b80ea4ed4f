package port

import (
	"context"
	"errors"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

// ErrStaleSnapshot is returned by Save when a newer snapshot is already stored.
var ErrStaleSnapshot = errors.New("stale snapshot")

type SnapshotRepository interface {
	// Save stores snap unless the stored version is newer
	Save(ctx context.Context, snap domain.Snapshot) error

	// Load returns the stored snapshot, or nil when nothing has been saved yet
	Load(ctx context.Context) (*domain.Snapshot, error)
}
