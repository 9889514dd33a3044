package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/foliotrack/folio/internal/app"
	"github.com/foliotrack/folio/internal/models"
	"github.com/foliotrack/folio/internal/services/snapshot"
)

// loadJSON reads and decodes a JSON input file into v.
func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func runSnapshot(ctx context.Context, a *app.App, positionsPath, ledgerPath string) error {
	if positionsPath == "" {
		return fmt.Errorf("--positions is required")
	}

	var positions []models.Asset
	if err := loadJSON(positionsPath, &positions); err != nil {
		return err
	}

	var ledger []models.Transaction
	if ledgerPath != "" {
		if err := loadJSON(ledgerPath, &ledger); err != nil {
			return err
		}
	}

	result, err := a.Snapshots.RunCycle(ctx, positions, ledger)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot recorded: %d positions, total value %.2f\n",
		len(result.Snapshot.Assets), result.Snapshot.TotalValue)

	if result.Diff != nil {
		printDiff(result.Diff)
	}
	return nil
}

func runHistory(ctx context.Context, a *app.App) error {
	history, err := a.Snapshots.History(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("No snapshots recorded.")
		return nil
	}

	for i, snap := range history {
		fmt.Printf("%3d  %s  %10.2f  %d positions\n",
			i, snap.Timestamp.Format("2006-01-02 15:04"), snap.TotalValue, len(snap.Assets))
	}
	return nil
}

func runDiff(ctx context.Context, a *app.App) error {
	history, err := a.Snapshots.History(ctx)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		fmt.Println("Need at least two snapshots to compare.")
		return nil
	}

	diff := snapshot.Compare(history[len(history)-1], history[len(history)-2])
	printDiff(diff)
	return nil
}

func printDiff(diff *models.DiffReport) {
	fmt.Printf("Change: %+.2f (%+.2f%%)\n", diff.TotalValueChange, diff.TotalValueChangePct)

	if len(diff.TopGainers) > 0 {
		fmt.Println("Top gainers:")
		for _, m := range diff.TopGainers {
			fmt.Printf("  %-30s %+10.2f\n", m.Name, m.ValueChange)
		}
	}
	if len(diff.TopLosers) > 0 {
		fmt.Println("Top losers:")
		for _, m := range diff.TopLosers {
			fmt.Printf("  %-30s %+10.2f\n", m.Name, m.ValueChange)
		}
	}
	if len(diff.QuantityChanges) > 0 {
		fmt.Println("Quantity changes:")
		for _, q := range diff.QuantityChanges {
			fmt.Printf("  %-30s %s %+.2f units (%.2f -> %.2f)\n",
				q.Name, q.ChangeType, q.QuantityChange, q.PreviousQuantity, q.CurrentQuantity)
		}
	}
	if len(diff.NewPositions) > 0 {
		fmt.Println("New positions:")
		for _, p := range diff.NewPositions {
			fmt.Printf("  %-30s %.2f units, value %.2f\n", p.Name, p.Quantity, p.CurrentValue)
		}
	}
	if len(diff.SoldPositions) > 0 {
		fmt.Println("Sold positions:")
		for _, p := range diff.SoldPositions {
			fmt.Printf("  %-30s realized %+.2f\n", p.Name, p.RealizedGainLoss)
		}
	}
}

func runBreakdown(ctx context.Context, a *app.App) error {
	latest, err := a.Snapshots.Latest(ctx)
	if err != nil {
		return err
	}
	if latest == nil {
		fmt.Println("No snapshots recorded.")
		return nil
	}

	breakdown := snapshot.Breakdown(latest)

	// Render categories largest first.
	categories := make([]models.Category, 0, len(breakdown.Categories))
	for c := range breakdown.Categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return breakdown.Categories[categories[i]].TotalValue > breakdown.Categories[categories[j]].TotalValue
	})

	fmt.Printf("Portfolio at %s: total %.2f\n",
		breakdown.Timestamp.Format("2006-01-02 15:04"), breakdown.TotalValue)
	for _, c := range categories {
		group := breakdown.Categories[c]
		fmt.Printf("\n%s: %.2f (%.1f%%)\n", c, group.TotalValue, group.Percentage)
		for _, p := range group.Positions {
			fmt.Printf("  %-30s %10.2f  %+8.2f (%+.1f%%)\n",
				p.Name, p.CurrentValue, p.GainLoss, p.GainLossPct)
		}
	}
	return nil
}

func runSync(ctx context.Context, a *app.App) error {
	syncer, ok := a.Syncer()
	if !ok {
		return fmt.Errorf("sync requires the hybrid storage backend (current: %s)", a.Config.Storage.Backend)
	}

	synced, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d pending snapshot(s) to cloud storage.\n", synced)
	return nil
}

func runStatus(ctx context.Context, a *app.App) error {
	fmt.Printf("Backend:   %s\n", a.Config.Storage.Backend)
	fmt.Printf("Available: %v\n", a.Store.Available(ctx))

	if syncer, ok := a.Syncer(); ok {
		status := syncer.SyncStatus(ctx)
		fmt.Printf("Cloud:     available=%v\n", status.PrimaryAvailable)
		fmt.Printf("Local:     available=%v\n", status.FallbackAvailable)
		fmt.Printf("Pending:   %d\n", status.PendingSyncs)
		fmt.Printf("Synced:    %v\n", status.FullySynced)
	}
	return nil
}

func runDelete(ctx context.Context, a *app.App, index int) error {
	if index < 0 {
		return fmt.Errorf("--index is required")
	}
	if err := a.Snapshots.Delete(ctx, index); err != nil {
		return err
	}
	fmt.Printf("Snapshot %d deleted.\n", index)
	return nil
}
