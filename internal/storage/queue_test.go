package storage

import (
	"testing"
	"time"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

func newTestQueue(t *testing.T, dir string) *SyncQueue {
	t.Helper()
	q, err := NewSyncQueue(common.NewSilentLogger(), dir)
	if err != nil {
		t.Fatalf("NewSyncQueue failed: %v", err)
	}
	return q
}

func queueSnapshot(day int) *models.Snapshot {
	return &models.Snapshot{
		Timestamp:  time.Date(2025, 2, day, 9, 0, 0, 0, time.UTC),
		TotalValue: 100,
		Assets:     []models.Asset{{Name: "AAPL", Quantity: 1, Category: models.CategoryUSStocks, CurrentValue: 100}},
	}
}

func TestSyncQueue_FIFOOrder(t *testing.T) {
	q := newTestQueue(t, t.TempDir())
	defer q.Close()

	for _, day := range []int{3, 10, 17} {
		if err := q.Enqueue(queueSnapshot(day)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	items, err := q.Items()
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, day := range []int{3, 10, 17} {
		if items[i].Snapshot.Timestamp.Day() != day {
			t.Errorf("item %d: day = %d, want %d (FIFO order broken)", i, items[i].Snapshot.Timestamp.Day(), day)
		}
	}
}

func TestSyncQueue_RemoveAndLen(t *testing.T) {
	q := newTestQueue(t, t.TempDir())
	defer q.Close()

	if err := q.Enqueue(queueSnapshot(3)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := q.Enqueue(queueSnapshot(10)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	items, err := q.Items()
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if err := q.Remove(items[0].Seq); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	n, err := q.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}

	// Removing a missing entry is not an error.
	if err := q.Remove(9999); err != nil {
		t.Errorf("Remove of missing entry failed: %v", err)
	}
}

// Pending entries must survive a close/reopen cycle in order.
func TestSyncQueue_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	q := newTestQueue(t, dir)
	for _, day := range []int{3, 10} {
		if err := q.Enqueue(queueSnapshot(day)); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := newTestQueue(t, dir)
	defer reopened.Close()

	items, err := reopened.Items()
	if err != nil {
		t.Fatalf("Items failed after reopen: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after reopen, got %d", len(items))
	}
	if items[0].Snapshot.Timestamp.Day() != 3 || items[1].Snapshot.Timestamp.Day() != 10 {
		t.Error("queue order not preserved across restart")
	}
}
