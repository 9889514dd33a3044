package models

import (
	"strings"
	"time"
)

// TransactionKind distinguishes buys from sells.
type TransactionKind string

const (
	TransactionBuy  TransactionKind = "buy"
	TransactionSell TransactionKind = "sell"
)

// Transaction is an externally recorded buy or sell event from the ledger.
// The core treats transactions as read-only and pre-normalized: currency
// conversion happens in the ledger adapter, not here.
type Transaction struct {
	Date                   time.Time       `json:"date"` // trade date, no time-of-day granularity
	AssetName              string          `json:"asset_name"`
	Quantity               float64         `json:"quantity"`
	PricePerUnit           float64         `json:"price_per_unit"` // original currency
	Currency               string          `json:"currency"`
	PricePerUnitNormalized float64         `json:"price_per_unit_normalized"` // base currency
	Kind                   TransactionKind `json:"kind"`
}

// Validate checks the transaction's shape.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.AssetName) == "" {
		return &InvalidInputError{Reason: "transaction asset name is empty"}
	}
	if t.Quantity <= 0 {
		return &InvalidInputError{Reason: "transaction for '" + t.AssetName + "' has non-positive quantity"}
	}
	if t.Kind != TransactionBuy && t.Kind != TransactionSell {
		return &InvalidInputError{Reason: "transaction for '" + t.AssetName + "' has unknown kind '" + string(t.Kind) + "'"}
	}
	return nil
}

// LedgerMetadata summarizes a persisted ledger document.
type LedgerMetadata struct {
	BuyCount  int       `json:"buy_count"`
	SellCount int       `json:"sell_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerDocument is the persisted form of the reconciled transaction ledger.
type LedgerDocument struct {
	Transactions []Transaction  `json:"transactions"`
	Metadata     LedgerMetadata `json:"metadata"`
}

// NewLedgerDocument builds a ledger document with counts filled in.
func NewLedgerDocument(transactions []Transaction, updatedAt time.Time) *LedgerDocument {
	doc := &LedgerDocument{
		Transactions: transactions,
		Metadata:     LedgerMetadata{UpdatedAt: updatedAt},
	}
	for _, t := range transactions {
		switch t.Kind {
		case TransactionBuy:
			doc.Metadata.BuyCount++
		case TransactionSell:
			doc.Metadata.SellCount++
		}
	}
	return doc
}
