package snapshot

import (
	"sort"

	"github.com/foliotrack/folio/internal/models"
)

// Breakdown organizes a snapshot's positions by category with per-category
// totals, portfolio percentages, and per-position gain/loss.
func Breakdown(snap *models.Snapshot) *models.CategoryBreakdown {
	result := &models.CategoryBreakdown{
		Timestamp:  snap.Timestamp,
		TotalValue: snap.TotalValue,
		Categories: make(map[models.Category]models.CategoryGroup),
	}

	for _, asset := range snap.Assets {
		group := result.Categories[asset.Category]

		gainLoss := asset.CurrentValue - asset.PurchasePriceTotal
		var gainLossPct float64
		if asset.PurchasePriceTotal > 0 {
			gainLossPct = gainLoss / asset.PurchasePriceTotal * 100
		}

		group.Positions = append(group.Positions, models.CategoryPosition{
			Name:               asset.Name,
			Quantity:           asset.Quantity,
			CurrentValue:       asset.CurrentValue,
			PurchasePriceTotal: asset.PurchasePriceTotal,
			GainLoss:           gainLoss,
			GainLossPct:        gainLossPct,
		})
		group.TotalValue += asset.CurrentValue

		result.Categories[asset.Category] = group
	}

	for category, group := range result.Categories {
		if snap.TotalValue > 0 {
			group.Percentage = group.TotalValue / snap.TotalValue * 100
		}
		sort.SliceStable(group.Positions, func(i, j int) bool {
			return group.Positions[i].CurrentValue > group.Positions[j].CurrentValue
		})
		result.Categories[category] = group
	}

	return result
}
