package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/interfaces"
	"github.com/foliotrack/folio/internal/models"
	"github.com/foliotrack/folio/internal/services/reconcile"
)

// Service runs the reconciliation cycle: build a snapshot from the
// position feed, validate it against the transaction ledger, and persist
// it only when validation succeeds.
type Service struct {
	store   interfaces.SnapshotStore
	matcher *reconcile.Matcher
	logger  *common.Logger
}

// NewService creates a snapshot service.
func NewService(store interfaces.SnapshotStore, matcher *reconcile.Matcher, logger *common.Logger) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		logger:  logger,
	}
}

// CycleResult is the outcome of one successful reconciliation cycle.
type CycleResult struct {
	Snapshot *models.Snapshot
	Previous *models.Snapshot // nil on first run
	Diff     *models.DiffReport
}

// RunCycle executes one reconciliation cycle. The snapshot is persisted
// only if the ledger covers every detected quantity change; a
// reconcile.ValidationError blocks persistence and propagates with its
// full missing-transaction list.
func (s *Service) RunCycle(ctx context.Context, positions []models.Asset, ledger []models.Transaction) (*CycleResult, error) {
	previous, err := s.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	current, err := Build(positions, time.Now())
	if err != nil {
		return nil, err
	}

	result := &CycleResult{Snapshot: current, Previous: previous}

	if previous != nil {
		if err := s.matcher.Validate(previous, current, ledger); err != nil {
			return nil, err
		}
		result.Diff = Compare(current, previous)
	} else {
		s.logger.Info().Msg("No previous snapshot, skipping reconciliation and diff")
	}

	if err := s.store.Append(ctx, current); err != nil {
		return nil, err
	}

	// Persist the ledger alongside the history for cross-machine sync.
	// A failed ledger write never blocks the cycle: the full ledger is
	// re-saved on the next run.
	if len(ledger) > 0 {
		doc := models.NewLedgerDocument(ledger, current.Timestamp)
		if err := s.store.SaveLedger(ctx, doc); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist ledger")
		}
	}

	s.logger.Info().
		Float64("total_value", current.TotalValue).
		Int("assets", len(current.Assets)).
		Msg("Reconciliation cycle complete")
	return result, nil
}

// History returns the full snapshot history, oldest first.
func (s *Service) History(ctx context.Context) ([]*models.Snapshot, error) {
	return s.store.All(ctx)
}

// Latest returns the most recent snapshot, or nil if none exists.
func (s *Service) Latest(ctx context.Context) (*models.Snapshot, error) {
	return s.store.Latest(ctx)
}

// Delete removes the snapshot at the given zero-based history index.
func (s *Service) Delete(ctx context.Context, index int) error {
	return s.store.Delete(ctx, index)
}
