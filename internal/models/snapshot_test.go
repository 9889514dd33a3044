package models

import (
	"errors"
	"testing"
	"time"
)

func validSnapshot() *Snapshot {
	return &Snapshot{
		Timestamp:  time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
		TotalValue: 1500.50,
		Assets: []Asset{
			{Name: "Intel Corp", Quantity: 55, Category: CategoryUSStocks, PurchasePriceTotal: 2335.71, CurrentValue: 1050.27},
			{Name: "Cash EUR", Quantity: 450.23, Category: CategoryCash, CurrentValue: 450.23},
		},
	}
}

func TestSnapshotValidate(t *testing.T) {
	if err := validSnapshot().Validate(); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
}

func TestSnapshotValidateRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"zero timestamp", func(s *Snapshot) { s.Timestamp = time.Time{} }},
		{"empty asset name", func(s *Snapshot) { s.Assets[0].Name = "  " }},
		{"negative quantity", func(s *Snapshot) { s.Assets[0].Quantity = -1 }},
		{"total mismatch", func(s *Snapshot) { s.TotalValue = 9999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %T: %v", err, err)
			}
		})
	}
}

func TestAssetsByName(t *testing.T) {
	s := validSnapshot()
	byName := s.AssetsByName()
	if len(byName) != 2 {
		t.Fatalf("len = %d, want 2", len(byName))
	}
	if byName["Intel Corp"].Quantity != 55 {
		t.Errorf("Intel Corp quantity = %v, want 55", byName["Intel Corp"].Quantity)
	}
	// Identity is case-sensitive
	if _, ok := byName["intel corp"]; ok {
		t.Error("lowercase name should not resolve")
	}
}

func TestTransactionValidate(t *testing.T) {
	tx := Transaction{
		Date:      time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		AssetName: "Apple",
		Quantity:  100,
		Kind:      TransactionSell,
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	bad := tx
	bad.Quantity = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero quantity should be rejected")
	}

	bad = tx
	bad.Kind = "transfer"
	if err := bad.Validate(); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestNewLedgerDocumentCounts(t *testing.T) {
	now := time.Now().UTC()
	doc := NewLedgerDocument([]Transaction{
		{AssetName: "A", Quantity: 1, Kind: TransactionBuy},
		{AssetName: "B", Quantity: 2, Kind: TransactionSell},
		{AssetName: "C", Quantity: 3, Kind: TransactionBuy},
	}, now)

	if doc.Metadata.BuyCount != 2 || doc.Metadata.SellCount != 1 {
		t.Errorf("counts = %d buys / %d sells, want 2/1", doc.Metadata.BuyCount, doc.Metadata.SellCount)
	}
	if !doc.Metadata.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", doc.Metadata.UpdatedAt, now)
	}
}
