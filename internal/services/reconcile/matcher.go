// Package reconcile proves that quantity changes between adjacent
// snapshots are backed by recorded ledger transactions.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/models"
)

// ValidationError carries the complete list of unbacked changes. The
// operator needs every item in one pass, so the matcher never fails fast
// on the first violation.
type ValidationError struct {
	Missing []models.MissingTransactionReport
}

// Error renders one remediation line per missing transaction.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ledger validation failed: %d quantity change(s) without matching transactions:", len(e.Missing))
	for _, m := range e.Missing {
		coverage := "none recorded"
		if m.IsPartial {
			coverage = fmt.Sprintf("partial: %.2f recorded, %.2f missing", m.QuantityFoundInLedger, m.QuantityMissing)
		}
		fmt.Fprintf(&b, "\n  - %s [%s] %s of %.2f units between %s and %s (%s)",
			m.AssetName, m.Category, m.Kind, m.QuantityDetected,
			m.WindowStart.Format("2006-01-02"), m.WindowEnd.Format("2006-01-02"),
			coverage)
	}
	return b.String()
}

// Matcher detects buys and sells between two snapshots and validates them
// against the transaction ledger. Pure and in-memory: no I/O.
type Matcher struct {
	config common.ReconcileConfig
	logger *common.Logger
}

// NewMatcher creates a matcher with the given reconciliation settings.
func NewMatcher(config common.ReconcileConfig, logger *common.Logger) *Matcher {
	return &Matcher{config: config, logger: logger}
}

// DetectChanges infers buys and sells from the quantity deltas between the
// previous and current snapshots. Exempt categories are skipped, and
// deltas below the detection threshold are treated as rounding noise.
// Slice order is preserved for deterministic output: sells in previous
// snapshot order, then buys in current snapshot order.
func (m *Matcher) DetectChanges(previous, current *models.Snapshot) []models.DetectedChange {
	prevByName := previous.AssetsByName()
	currByName := current.AssetsByName()

	var changes []models.DetectedChange

	// Sell pass: full liquidations and reductions, in previous order.
	for _, prev := range previous.Assets {
		if m.config.IsExempt(string(prev.Category)) {
			continue
		}

		curr, held := currByName[prev.Name]
		if !held {
			if prev.Quantity >= m.config.DetectionThreshold {
				changes = append(changes, m.change(prev.Name, prev.Category, models.TransactionSell,
					prev.Quantity, prev.Quantity, 0, false, previous, current))
			}
			continue
		}

		if delta := prev.Quantity - curr.Quantity; delta >= m.config.DetectionThreshold {
			changes = append(changes, m.change(prev.Name, prev.Category, models.TransactionSell,
				delta, prev.Quantity, curr.Quantity, false, previous, current))
		}
	}

	// Buy pass: new positions and increases, in current order.
	for _, curr := range current.Assets {
		if m.config.IsExempt(string(curr.Category)) {
			continue
		}

		prev, held := prevByName[curr.Name]
		if !held {
			if curr.Quantity >= m.config.DetectionThreshold {
				changes = append(changes, m.change(curr.Name, curr.Category, models.TransactionBuy,
					curr.Quantity, 0, curr.Quantity, true, previous, current))
			}
			continue
		}

		if delta := curr.Quantity - prev.Quantity; delta >= m.config.DetectionThreshold {
			changes = append(changes, m.change(curr.Name, curr.Category, models.TransactionBuy,
				delta, prev.Quantity, curr.Quantity, false, previous, current))
		}
	}

	if len(changes) > 0 {
		m.logger.Debug().Int("changes", len(changes)).Msg("Quantity changes detected between snapshots")
	}
	return changes
}

func (m *Matcher) change(name string, category models.Category, kind models.TransactionKind,
	quantity, prevQty, currQty float64, isNew bool, previous, current *models.Snapshot) models.DetectedChange {
	return models.DetectedChange{
		AssetName:        name,
		Category:         category,
		Kind:             kind,
		QuantityChanged:  quantity,
		PreviousQuantity: prevQty,
		CurrentQuantity:  currQty,
		IsNewPosition:    isNew,
		WindowStart:      previous.Timestamp,
		WindowEnd:        current.Timestamp,
	}
}

// Validate checks every detected change between the two snapshots against
// the ledger. It returns nil when all changes are covered, or a
// ValidationError listing every uncovered change.
func (m *Matcher) Validate(previous, current *models.Snapshot, ledger []models.Transaction) error {
	changes := m.DetectChanges(previous, current)
	if len(changes) == 0 {
		return nil
	}

	var missing []models.MissingTransactionReport
	for _, change := range changes {
		found := m.sumMatching(change, ledger)
		if math.Abs(found-change.QuantityChanged) <= m.config.QuantityTolerance {
			continue
		}

		missing = append(missing, models.MissingTransactionReport{
			AssetName:             change.AssetName,
			Category:              change.Category,
			Kind:                  change.Kind,
			QuantityDetected:      change.QuantityChanged,
			QuantityFoundInLedger: found,
			QuantityMissing:       change.QuantityChanged - found,
			IsPartial:             found > 0,
			IsNewPosition:         change.IsNewPosition,
			WindowStart:           change.WindowStart,
			WindowEnd:             change.WindowEnd,
		})
	}

	if len(missing) > 0 {
		m.logger.Warn().
			Int("detected", len(changes)).
			Int("missing", len(missing)).
			Msg("Ledger validation failed")
		return &ValidationError{Missing: missing}
	}

	m.logger.Debug().Int("detected", len(changes)).Msg("All detected changes backed by ledger")
	return nil
}

// sumMatching totals ledger quantities of the change's kind for the exact
// asset name (ordinal comparison, no case-folding) dated strictly after
// the window start and up to and including the window end. Transactions
// dated after the window end are ignored, not errors.
func (m *Matcher) sumMatching(change models.DetectedChange, ledger []models.Transaction) float64 {
	var sum float64
	for _, t := range ledger {
		if t.Kind != change.Kind || t.AssetName != change.AssetName {
			continue
		}
		if !t.Date.After(change.WindowStart) {
			continue
		}
		if t.Date.After(change.WindowEnd) {
			continue
		}
		sum += t.Quantity
	}
	return sum
}
