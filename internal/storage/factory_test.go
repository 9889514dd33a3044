package storage

import (
	"context"
	"testing"

	"github.com/foliotrack/folio/internal/common"
)

func TestNewSnapshotStore_Local(t *testing.T) {
	config := &common.StorageConfig{
		Backend: common.BackendLocal,
		Local:   common.LocalConfig{Path: t.TempDir()},
	}

	store, err := NewSnapshotStore(context.Background(), common.NewSilentLogger(), config)
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*LocalStore); !ok {
		t.Errorf("expected *LocalStore, got %T", store)
	}
}

func TestNewSnapshotStore_GCSRequiresBucket(t *testing.T) {
	config := &common.StorageConfig{
		Backend: common.BackendGCS,
		GCS:     common.GCSConfig{Bucket: ""},
	}

	if _, err := NewSnapshotStore(context.Background(), common.NewSilentLogger(), config); err == nil {
		t.Error("expected error for gcs backend without bucket")
	}
}

// Hybrid degrades to a plain local store when the cloud side cannot be
// constructed.
func TestNewSnapshotStore_HybridDegradesToLocal(t *testing.T) {
	dir := t.TempDir()
	config := &common.StorageConfig{
		Backend: common.BackendHybrid,
		Local:   common.LocalConfig{Path: dir + "/data"},
		GCS:     common.GCSConfig{Bucket: ""}, // misconfigured cloud side
		Queue:   common.QueueConfig{Path: dir + "/queue"},
	}

	store, err := NewSnapshotStore(context.Background(), common.NewSilentLogger(), config)
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*LocalStore); !ok {
		t.Errorf("expected degraded *LocalStore, got %T", store)
	}
}

func TestNewSnapshotStore_UnknownBackend(t *testing.T) {
	config := &common.StorageConfig{Backend: "redis"}
	if _, err := NewSnapshotStore(context.Background(), common.NewSilentLogger(), config); err == nil {
		t.Error("expected error for unknown backend")
	}
}
