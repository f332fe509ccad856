package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	domain "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
)

// Repository persists store snapshots to a single JSON file as a flat object with
// two-space indentation, overwriting the file wholesale on every save. Keys appear
// in store insertion order and are read back in file order.
type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) Load(ctx context.Context) (domain.Snapshot, error) {
	_ = ctx

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, r.path)
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, r.path, err)
	}
	return snap, nil
}

func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) error {
	_ = ctx

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}
