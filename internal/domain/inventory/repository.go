package inventory

import (
	"context"
)

// SnapshotRepository persists and restores whole-store snapshots. Load reports a
// missing backing file as ErrSnapshotNotFound and an unparsable one as
// ErrSnapshotCorrupt so callers can apply the bootstrap-vs-data-loss policy.
type SnapshotRepository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
