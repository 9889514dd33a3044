package storage

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// pendingSnapshot is a snapshot that could not be written to cloud storage
// and is awaiting retry. Seq preserves enqueue order across restarts.
type pendingSnapshot struct {
	Seq        uint64 `badgerhold:"key"`
	Snapshot   *models.Snapshot
	EnqueuedAt time.Time
}

// SyncQueue is a durable FIFO of snapshots pending upload to the cloud
// backend. It survives process restarts.
type SyncQueue struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewSyncQueue opens (or creates) the queue database at the given path.
func NewSyncQueue(logger *common.Logger, path string) (*SyncQueue, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open sync queue at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Sync queue opened")
	return &SyncQueue{store: store, logger: logger}, nil
}

// Enqueue appends a snapshot to the tail of the queue.
func (q *SyncQueue) Enqueue(snapshot *models.Snapshot) error {
	item := &pendingSnapshot{
		Snapshot:   snapshot,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.store.Insert(badgerhold.NextSequence(), item); err != nil {
		return fmt.Errorf("failed to enqueue snapshot: %w", err)
	}

	q.logger.Warn().
		Time("snapshot_at", snapshot.Timestamp).
		Msg("Snapshot queued for later cloud sync")
	return nil
}

// Items returns all pending snapshots in enqueue order.
func (q *SyncQueue) Items() ([]*pendingSnapshot, error) {
	var items []*pendingSnapshot
	if err := q.store.Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to read sync queue: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	return items, nil
}

// Remove deletes the pending entry with the given sequence number.
func (q *SyncQueue) Remove(seq uint64) error {
	if err := q.store.Delete(seq, pendingSnapshot{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to remove queue entry %d: %w", seq, err)
	}
	return nil
}

// Len returns the number of pending snapshots.
func (q *SyncQueue) Len() (int, error) {
	count, err := q.store.Count(pendingSnapshot{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count sync queue: %w", err)
	}
	return int(count), nil
}

// Close closes the underlying database.
func (q *SyncQueue) Close() error {
	return q.store.Close()
}
