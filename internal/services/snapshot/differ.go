package snapshot

import (
	"math"
	"sort"

	"github.com/foliotrack/folio/internal/models"
)

// quantityChangeThreshold filters sub-hundredth share drift out of the
// quantity-change report rows.
const quantityChangeThreshold = 0.01

// topMoverCount bounds each of the gainer and loser lists.
const topMoverCount = 3

// Compare produces a diff report between two adjacent snapshots. Held
// names are walked in current snapshot order so tie-breaking is
// deterministic; the caller skips the differ entirely when no previous
// snapshot exists.
func Compare(current, previous *models.Snapshot) *models.DiffReport {
	currByName := current.AssetsByName()
	prevByName := previous.AssetsByName()

	report := &models.DiffReport{
		TotalValueChange: current.TotalValue - previous.TotalValue,
	}
	if previous.TotalValue > 0 {
		report.TotalValueChangePct = report.TotalValueChange / previous.TotalValue * 100
	}

	// Held positions: value movers and quantity changes.
	var movers []models.Mover
	for _, curr := range current.Assets {
		prev, held := prevByName[curr.Name]
		if !held {
			continue
		}

		movers = append(movers, models.Mover{
			Name:        curr.Name,
			ValueChange: curr.CurrentValue - prev.CurrentValue,
		})

		qtyChange := curr.Quantity - prev.Quantity
		if math.Abs(qtyChange) > quantityChangeThreshold {
			report.QuantityChanges = append(report.QuantityChanges, quantityChangeRow(curr, prev, qtyChange))
		}
	}

	sort.SliceStable(movers, func(i, j int) bool {
		return math.Abs(movers[i].ValueChange) > math.Abs(movers[j].ValueChange)
	})
	for _, m := range movers {
		switch {
		case m.ValueChange > 0 && len(report.TopGainers) < topMoverCount:
			report.TopGainers = append(report.TopGainers, m)
		case m.ValueChange < 0 && len(report.TopLosers) < topMoverCount:
			report.TopLosers = append(report.TopLosers, m)
		}
	}

	// Purchases first by quantity descending, then sales by magnitude.
	sort.SliceStable(report.QuantityChanges, func(i, j int) bool {
		a, b := report.QuantityChanges[i], report.QuantityChanges[j]
		if a.ChangeType != b.ChangeType {
			return a.ChangeType == "purchase"
		}
		return math.Abs(a.QuantityChange) > math.Abs(b.QuantityChange)
	})

	for _, curr := range current.Assets {
		if _, held := prevByName[curr.Name]; !held {
			report.NewPositions = append(report.NewPositions, models.NewPosition{
				Name:         curr.Name,
				Quantity:     curr.Quantity,
				CurrentValue: curr.CurrentValue,
			})
		}
	}

	for _, prev := range previous.Assets {
		if _, held := currByName[prev.Name]; !held {
			report.SoldPositions = append(report.SoldPositions, models.SoldPosition{
				Name:             prev.Name,
				RealizedGainLoss: prev.CurrentValue - prev.PurchasePriceTotal,
			})
		}
	}

	return report
}

func quantityChangeRow(curr, prev models.Asset, qtyChange float64) models.QuantityChange {
	changeType := "purchase"
	if qtyChange < 0 {
		changeType = "sale"
	}

	var currPerShare, prevPerShare float64
	if curr.Quantity > 0 {
		currPerShare = curr.CurrentValue / curr.Quantity
	}
	if prev.Quantity > 0 {
		prevPerShare = prev.CurrentValue / prev.Quantity
	}

	return models.QuantityChange{
		Name:                  curr.Name,
		Category:              curr.Category,
		PreviousQuantity:      prev.Quantity,
		CurrentQuantity:       curr.Quantity,
		QuantityChange:        qtyChange,
		ChangeType:            changeType,
		CurrentPricePerShare:  currPerShare,
		PreviousPricePerShare: prevPerShare,
		CurrentTotalValue:     curr.CurrentValue,
		ValueChange:           curr.CurrentValue - prev.CurrentValue,
	}
}
