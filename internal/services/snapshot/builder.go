// Package snapshot builds, compares, and summarizes portfolio snapshots.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/foliotrack/folio/internal/models"
)

// Build turns a normalized, currency-converted position list into an
// immutable snapshot. Positions are expected to be pre-filtered upstream;
// malformed assets are still rejected defensively.
func Build(positions []models.Asset, now time.Time) (*models.Snapshot, error) {
	var total float64
	for i := range positions {
		if err := positions[i].Validate(); err != nil {
			return nil, err
		}
		total += positions[i].CurrentValue
	}

	assets := make([]models.Asset, len(positions))
	copy(assets, positions)

	return &models.Snapshot{
		ID:         uuid.New().String(),
		Timestamp:  now.UTC(),
		TotalValue: total,
		Assets:     assets,
	}, nil
}
