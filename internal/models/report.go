package models

import "time"

// Mover captures a held position's value change between two snapshots.
type Mover struct {
	Name        string  `json:"name"`
	ValueChange float64 `json:"value_change"`
}

// QuantityChange records a held position whose quantity moved between
// snapshots, with per-share context for the report renderer.
type QuantityChange struct {
	Name                  string   `json:"name"`
	Category              Category `json:"category"`
	PreviousQuantity      float64  `json:"previous_quantity"`
	CurrentQuantity       float64  `json:"current_quantity"`
	QuantityChange        float64  `json:"quantity_change"` // signed
	ChangeType            string   `json:"change_type"`     // "purchase" or "sale"
	CurrentPricePerShare  float64  `json:"current_price_per_share"`
	PreviousPricePerShare float64  `json:"previous_price_per_share"`
	CurrentTotalValue     float64  `json:"current_total_value"`
	ValueChange           float64  `json:"value_change"`
}

// NewPosition describes an asset present in the current snapshot only.
type NewPosition struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	CurrentValue float64 `json:"current_value"`
}

// SoldPosition describes an asset present in the previous snapshot only.
// RealizedGainLoss approximates proceeds with the value at last
// observation minus cost basis; this matches historical report semantics
// and is intentionally not computed from actual sale prices.
type SoldPosition struct {
	Name             string  `json:"name"`
	RealizedGainLoss float64 `json:"realized_gain_loss"`
}

// DiffReport is the output of comparing two adjacent snapshots.
// Consumed by the report renderer; never persisted.
type DiffReport struct {
	TotalValueChange    float64          `json:"total_value_change"`
	TotalValueChangePct float64          `json:"total_value_change_percent"`
	TopGainers          []Mover          `json:"top_gainers"`
	TopLosers           []Mover          `json:"top_losers"`
	QuantityChanges     []QuantityChange `json:"quantity_changes"`
	NewPositions        []NewPosition    `json:"new_positions"`
	SoldPositions       []SoldPosition   `json:"sold_positions"`
}

// CategoryPosition is one position inside a category breakdown.
type CategoryPosition struct {
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	CurrentValue       float64 `json:"current_value"`
	PurchasePriceTotal float64 `json:"purchase_price_total"`
	GainLoss           float64 `json:"gain_loss"`
	GainLossPct        float64 `json:"gain_loss_percent"`
}

// CategoryGroup aggregates one category's positions.
type CategoryGroup struct {
	TotalValue float64            `json:"total_value"`
	Percentage float64            `json:"percentage"` // of portfolio total
	Positions  []CategoryPosition `json:"positions"`  // sorted by value, descending
}

// CategoryBreakdown organizes a snapshot's positions by category with
// aggregated statistics. Consumed by the dashboard generator.
type CategoryBreakdown struct {
	Timestamp  time.Time                  `json:"timestamp"`
	TotalValue float64                    `json:"total_value"`
	Categories map[Category]CategoryGroup `json:"categories"`
}
