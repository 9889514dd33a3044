package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/foliotrack/folio/internal/app"
	"github.com/foliotrack/folio/internal/common"
	"github.com/foliotrack/folio/internal/services/reconcile"
)

const usage = `folio - portfolio snapshot reconciliation

Usage:
  folio snapshot --positions <file> [--ledger <file>]   run a reconciliation cycle
  folio history                                          list all snapshots
  folio diff                                             compare the two latest snapshots
  folio breakdown                                        show latest snapshot by category
  folio sync                                             flush pending cloud syncs
  folio status                                           show storage and sync status
  folio delete --index <n>                               delete a snapshot by history index
  folio version                                          print version

Flags common to all commands:
  --config <file>   config file path (default: folio.toml next to the binary)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	if command == "version" {
		fmt.Println(common.GetFullVersion())
		return
	}

	if err := run(command, args); err != nil {
		var validationErr *reconcile.ValidationError
		if errors.As(err, &validationErr) {
			// The operator needs the complete remediation list in one pass.
			fmt.Fprintln(os.Stderr, validationErr.Error())
			os.Exit(3)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "", "config file path")
	positionsPath := flags.String("positions", "", "positions JSON file")
	ledgerPath := flags.String("ledger", "", "transaction ledger JSON file")
	index := flags.Int("index", -1, "history index to delete")
	flags.Parse(args)

	ctx := context.Background()

	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	switch command {
	case "snapshot":
		return runSnapshot(ctx, a, *positionsPath, *ledgerPath)
	case "history":
		return runHistory(ctx, a)
	case "diff":
		return runDiff(ctx, a)
	case "breakdown":
		return runBreakdown(ctx, a)
	case "sync":
		return runSync(ctx, a)
	case "status":
		return runStatus(ctx, a)
	case "delete":
		return runDelete(ctx, a, *index)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}
