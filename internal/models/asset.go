// Package models defines data structures for Folio
package models

import "strings"

// Category classifies a portfolio position.
type Category string

const (
	CategoryUSStocks Category = "US Stocks"
	CategoryEUStocks Category = "EU Stocks"
	CategoryBonds    Category = "Bonds"
	CategoryETFs     Category = "ETFs"
	CategoryPension  Category = "Pension"
	CategoryCash     Category = "Cash"
)

// Asset represents a single portfolio position at one point in time.
// All monetary values are expressed in the portfolio's base currency.
type Asset struct {
	Name               string   `json:"name"`
	Quantity           float64  `json:"quantity"`
	Category           Category `json:"category"`
	PurchasePriceTotal float64  `json:"purchase_price_total"` // cost basis, base currency
	CurrentValue       float64  `json:"current_value"`        // base currency
}

// Validate checks the asset's shape. Callers are expected to have filtered
// malformed positions upstream; this re-validates defensively.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &InvalidInputError{Reason: "asset name is empty"}
	}
	if a.Quantity < 0 {
		return &InvalidInputError{Reason: "asset '" + a.Name + "' has negative quantity"}
	}
	return nil
}

// InvalidInputError indicates a malformed Asset or Snapshot shape,
// rejected before any I/O.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
