// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/foliotrack/folio/internal/models"
)

// SnapshotStore persists an ordered, append-only history of portfolio
// snapshots plus the reconciled transaction ledger. Implementations:
// local file, GCS object, hybrid (both).
type SnapshotStore interface {
	// Append adds a snapshot to the end of the history. The snapshot is
	// validated before any I/O. An existing history that cannot be parsed
	// fails the call with a CorruptionError and is left untouched.
	Append(ctx context.Context, snapshot *models.Snapshot) error

	// Latest returns the most recent snapshot, or nil if the history is
	// empty.
	Latest(ctx context.Context) (*models.Snapshot, error)

	// All returns the full history, oldest first.
	All(ctx context.Context) ([]*models.Snapshot, error)

	// Delete removes the snapshot at a zero-based index after taking a
	// timestamped backup.
	Delete(ctx context.Context, index int) error

	// SaveLedger persists the reconciled transaction ledger document.
	SaveLedger(ctx context.Context, doc *models.LedgerDocument) error

	// Ledger returns the persisted ledger document, or nil if absent.
	Ledger(ctx context.Context) (*models.LedgerDocument, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool

	// Close releases any resources held by the store.
	Close() error
}

// SyncStatus describes the hybrid backend's replication state.
type SyncStatus struct {
	PrimaryAvailable  bool `json:"primary_available"`
	FallbackAvailable bool `json:"fallback_available"`
	PendingSyncs      int  `json:"pending_syncs"`
	FullySynced       bool `json:"fully_synced"`
}

// Syncer is implemented by stores that replicate to a remote backend and
// may have queued writes awaiting retry.
type Syncer interface {
	// Sync retries queued snapshot uploads against the remote backend in
	// FIFO order, stopping at the first snapshot that cannot be uploaded.
	Sync(ctx context.Context) (synced int, err error)

	// SyncStatus reports backend availability and queue depth.
	SyncStatus(ctx context.Context) SyncStatus
}
