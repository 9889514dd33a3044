package models

import "time"

// DetectedChange is an inferred buy or sell derived purely from the
// quantity delta between two adjacent snapshots. Derived, never persisted.
type DetectedChange struct {
	AssetName        string          `json:"asset_name"`
	Category         Category        `json:"category"`
	Kind             TransactionKind `json:"kind"`
	QuantityChanged  float64         `json:"quantity_changed"` // always positive
	PreviousQuantity float64         `json:"previous_quantity"`
	CurrentQuantity  float64         `json:"current_quantity"`
	IsNewPosition    bool            `json:"is_new_position"` // buys only
	WindowStart      time.Time       `json:"window_start"`    // previous snapshot timestamp, exclusive
	WindowEnd        time.Time       `json:"window_end"`      // current snapshot timestamp, inclusive
}

// MissingTransactionReport itemizes a detected change the ledger does not
// cover. The operator surface prints these verbatim.
type MissingTransactionReport struct {
	AssetName             string          `json:"asset_name"`
	Category              Category        `json:"category"`
	Kind                  TransactionKind `json:"kind"`
	QuantityDetected      float64         `json:"quantity_detected"`
	QuantityFoundInLedger float64         `json:"quantity_found_in_ledger"`
	QuantityMissing       float64         `json:"quantity_missing"`
	IsPartial             bool            `json:"is_partial"`
	IsNewPosition         bool            `json:"is_new_position"`
	WindowStart           time.Time       `json:"window_start"`
	WindowEnd             time.Time       `json:"window_end"`
}
