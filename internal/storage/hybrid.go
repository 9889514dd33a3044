package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
)

// HybridStore writes every snapshot to local storage first (source of
// truth for durability), then mirrors it to cloud storage. Cloud writes
// that fail on a retryable error land in a durable FIFO queue and are
// flushed before the next cloud write, so remote order matches local
// order.
type HybridStore struct {
	local  interfaces.SnapshotStore
	cloud  interfaces.SnapshotStore
	queue  *SyncQueue
	logger *common.Logger
}

// NewHybridStore composes a hybrid store from the two backends and the
// pending-sync queue.
func NewHybridStore(logger *common.Logger, local, cloud interfaces.SnapshotStore, queue *SyncQueue) *HybridStore {
	return &HybridStore{
		local:  local,
		cloud:  cloud,
		queue:  queue,
		logger: logger,
	}
}

// Append writes to local storage first; a local failure (including
// corruption) aborts the whole operation. The cloud write then either
// succeeds, queues on a retryable failure, or surfaces a fatal error.
func (s *HybridStore) Append(ctx context.Context, snapshot *models.Snapshot) error {
	if err := s.local.Append(ctx, snapshot); err != nil {
		return err
	}

	if err := s.appendCloud(ctx, snapshot); err != nil {
		if errors.Is(err, ErrUnavailable) {
			s.logger.Warn().Err(err).Msg("Cloud write failed, snapshot queued for sync")
			if qerr := s.queue.Enqueue(snapshot); qerr != nil {
				return fmt.Errorf("cloud write failed and snapshot could not be queued: %w", qerr)
			}
			return nil
		}
		return err
	}

	return nil
}

// appendCloud flushes any pending snapshots first so the remote history
// keeps the same order as the local one, then appends the new snapshot.
func (s *HybridStore) appendCloud(ctx context.Context, snapshot *models.Snapshot) error {
	if _, err := s.flushPending(ctx); err != nil {
		return err
	}
	return s.cloud.Append(ctx, snapshot)
}

// flushPending uploads queued snapshots in FIFO order, stopping at the
// first failure to preserve ordering. Returns the number synced.
func (s *HybridStore) flushPending(ctx context.Context) (int, error) {
	items, err := s.queue.Items()
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("pending", len(items)).Msg("Flushing pending snapshots to cloud storage")

	synced := 0
	for _, item := range items {
		if err := s.cloud.Append(ctx, item.Snapshot); err != nil {
			return synced, err
		}
		if err := s.queue.Remove(item.Seq); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

// Latest prefers the cloud copy when reachable, falling back to local.
func (s *HybridStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	if s.cloud.Available(ctx) {
		snapshot, err := s.cloud.Latest(ctx)
		if err == nil && snapshot != nil {
			return snapshot, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Cloud read failed, falling back to local")
		}
	}
	return s.local.Latest(ctx)
}

// All prefers the cloud history when reachable, falling back to local.
func (s *HybridStore) All(ctx context.Context) ([]*models.Snapshot, error) {
	if s.cloud.Available(ctx) {
		history, err := s.cloud.All(ctx)
		if err == nil && len(history) > 0 {
			return history, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Cloud read failed, falling back to local")
		}
	}
	return s.local.All(ctx)
}

// Delete removes the snapshot from both backends; it succeeds if either
// side does.
func (s *HybridStore) Delete(ctx context.Context, index int) error {
	var cloudErr, localErr error

	if s.cloud.Available(ctx) {
		cloudErr = s.cloud.Delete(ctx, index)
		if cloudErr != nil {
			s.logger.Warn().Err(cloudErr).Msg("Cloud deletion failed")
		}
	} else {
		cloudErr = fmt.Errorf("cloud storage unavailable")
	}

	localErr = s.local.Delete(ctx, index)
	if localErr != nil {
		s.logger.Warn().Err(localErr).Msg("Local deletion failed")
	}

	if cloudErr != nil && localErr != nil {
		return fmt.Errorf("deletion failed on both backends: cloud: %v; local: %w", cloudErr, localErr)
	}
	return nil
}

// SaveLedger dual-writes the ledger. Unlike snapshots, failed cloud
// writes are not queued: the ledger is re-saved in full on the next
// cycle, so a stale copy self-heals.
func (s *HybridStore) SaveLedger(ctx context.Context, doc *models.LedgerDocument) error {
	localErr := s.local.SaveLedger(ctx, doc)
	if localErr != nil {
		s.logger.Error().Err(localErr).Msg("Local ledger write failed")
	}

	var cloudErr error
	if s.cloud.Available(ctx) {
		cloudErr = s.cloud.SaveLedger(ctx, doc)
		if cloudErr != nil {
			s.logger.Warn().Err(cloudErr).Msg("Cloud ledger write failed, will retry next save")
		}
	} else {
		cloudErr = fmt.Errorf("cloud storage unavailable")
	}

	if localErr != nil && cloudErr != nil {
		return fmt.Errorf("ledger write failed on both backends: cloud: %v; local: %w", cloudErr, localErr)
	}
	return nil
}

// Ledger prefers the cloud copy when reachable, falling back to local.
func (s *HybridStore) Ledger(ctx context.Context) (*models.LedgerDocument, error) {
	if s.cloud.Available(ctx) {
		doc, err := s.cloud.Ledger(ctx)
		if err == nil && doc != nil {
			return doc, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Cloud ledger read failed, falling back to local")
		}
	}
	return s.local.Ledger(ctx)
}

// Available reports true if either backend is reachable.
func (s *HybridStore) Available(ctx context.Context) bool {
	return s.local.Available(ctx) || s.cloud.Available(ctx)
}

// Sync attempts to flush the pending queue immediately, returning the
// number of snapshots uploaded.
func (s *HybridStore) Sync(ctx context.Context) (int, error) {
	if !s.cloud.Available(ctx) {
		pending, _ := s.queue.Len()
		return 0, fmt.Errorf("%w: cloud storage unreachable (%d pending)", ErrUnavailable, pending)
	}
	return s.flushPending(ctx)
}

// SyncStatus reports backend availability and queue depth.
func (s *HybridStore) SyncStatus(ctx context.Context) interfaces.SyncStatus {
	pending, err := s.queue.Len()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read sync queue length")
	}

	primaryUp := s.cloud.Available(ctx)
	return interfaces.SyncStatus{
		PrimaryAvailable:  primaryUp,
		FallbackAvailable: s.local.Available(ctx),
		PendingSyncs:      pending,
		FullySynced:       pending == 0 && primaryUp,
	}
}

// Close closes all owned resources, returning the first error.
func (s *HybridStore) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{s.queue, s.cloud, s.local} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ interfaces.SnapshotStore = (*HybridStore)(nil)
	_ interfaces.Syncer        = (*HybridStore)(nil)
)
