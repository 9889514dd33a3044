package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
	"github.com/foliotrack/folio/internal/services/reconcile"
)

// memStore is an in-memory SnapshotStore for service-level tests.
type memStore struct {
	history []*models.Snapshot
	ledger  *models.LedgerDocument
}

func (m *memStore) Append(ctx context.Context, s *models.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.history = append(m.history, s)
	return nil
}

func (m *memStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	if len(m.history) == 0 {
		return nil, nil
	}
	return m.history[len(m.history)-1], nil
}

func (m *memStore) All(ctx context.Context) ([]*models.Snapshot, error) { return m.history, nil }

func (m *memStore) Delete(ctx context.Context, index int) error {
	m.history = append(m.history[:index], m.history[index+1:]...)
	return nil
}

func (m *memStore) SaveLedger(ctx context.Context, doc *models.LedgerDocument) error {
	m.ledger = doc
	return nil
}

func (m *memStore) Ledger(ctx context.Context) (*models.LedgerDocument, error) {
	return m.ledger, nil
}

func (m *memStore) Available(ctx context.Context) bool { return true }
func (m *memStore) Close() error                       { return nil }

func newTestService(store *memStore) *Service {
	logger := common.NewSilentLogger()
	matcher := reconcile.NewMatcher(common.NewDefaultConfig().Reconcile, logger)
	return NewService(store, matcher, logger)
}

func TestRunCycle_FirstRunSkipsValidation(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	positions := []models.Asset{
		{Name: "Apple", Quantity: 100, Category: models.CategoryUSStocks, CurrentValue: 15000},
	}

	result, err := svc.RunCycle(context.Background(), positions, nil)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if result.Previous != nil {
		t.Error("expected no previous snapshot on first run")
	}
	if result.Diff != nil {
		t.Error("diff must be skipped on first run")
	}
	if len(store.history) != 1 {
		t.Errorf("expected 1 persisted snapshot, got %d", len(store.history))
	}
}

func TestRunCycle_ValidationFailureBlocksPersistence(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	first := []models.Asset{
		{Name: "Apple", Quantity: 100, Category: models.CategoryUSStocks, CurrentValue: 15000},
	}
	if _, err := svc.RunCycle(context.Background(), first, nil); err != nil {
		t.Fatalf("first RunCycle failed: %v", err)
	}

	// Apple liquidated with no sell in the ledger.
	second := []models.Asset{
		{Name: "Nvidia", Quantity: 100, Category: models.CategoryUSStocks, CurrentValue: 40000},
	}
	ledger := []models.Transaction{
		{Date: time.Now(), AssetName: "Nvidia", Quantity: 100, Kind: models.TransactionBuy},
	}

	_, err := svc.RunCycle(context.Background(), second, ledger)
	var validationErr *reconcile.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Missing) != 1 || validationErr.Missing[0].AssetName != "Apple" {
		t.Errorf("unexpected missing list: %+v", validationErr.Missing)
	}

	if len(store.history) != 1 {
		t.Error("rejected snapshot must not be persisted")
	}
}

func TestRunCycle_ValidCycleProducesDiffAndLedger(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)

	first := []models.Asset{
		{Name: "Apple", Quantity: 100, Category: models.CategoryUSStocks, CurrentValue: 15000},
	}
	if _, err := svc.RunCycle(context.Background(), first, nil); err != nil {
		t.Fatalf("first RunCycle failed: %v", err)
	}

	second := []models.Asset{
		{Name: "Apple", Quantity: 150, Category: models.CategoryUSStocks, CurrentValue: 24000},
	}
	ledger := []models.Transaction{
		{Date: time.Now(), AssetName: "Apple", Quantity: 50, Kind: models.TransactionBuy},
	}

	result, err := svc.RunCycle(context.Background(), second, ledger)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if result.Diff == nil {
		t.Fatal("expected a diff report")
	}
	if len(result.Diff.QuantityChanges) != 1 {
		t.Errorf("expected 1 quantity change, got %d", len(result.Diff.QuantityChanges))
	}
	if len(store.history) != 2 {
		t.Errorf("expected 2 persisted snapshots, got %d", len(store.history))
	}
	if store.ledger == nil || store.ledger.Metadata.BuyCount != 1 {
		t.Errorf("ledger not persisted correctly: %+v", store.ledger)
	}
}
