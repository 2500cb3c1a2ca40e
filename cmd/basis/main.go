// cmd/basis/main.go
//
// Command basis manages the cost-basis book outside the TUI: list, set,
// delete, bulk CSV import, and CSV/JSON export. It works against whichever
// store backend the config selects, so records edited here show up in the
// next preview.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/app"
	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/config"
	"github.com/mcintyre94/swapsies/internal/export"
)

const usage = `Usage: basis [-config path] [-debug] <command> [arguments]

Commands:
  list                              print every cost basis record
  get <mint>                        print one record
  set <mint> <total_usd> <units> [symbol]
                                    set the record from what was spent and
                                    how many display units were acquired
  delete <mint>                     remove a record
  import <file.csv>                 bulk upsert records from CSV
  export [-format csv|json] [-out dir] [-mint mint]
                                    write the book to a file
`

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	debug := flag.Bool("debug", false, "Log store operations")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zap.NewNop()
	if *debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("Failed to init logger: %v", err)
		}
		defer logger.Sync()
	}

	store, backend, err := app.OpenStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, store, backend, logger, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, store basis.Store, backend string, logger *zap.Logger, args []string) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "list":
		return list(ctx, store, backend)
	case "get":
		if len(rest) != 1 {
			return errors.New("usage: basis get <mint>")
		}
		return get(ctx, store, rest[0])
	case "set":
		return set(ctx, store, rest)
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: basis delete <mint>")
		}
		return del(ctx, store, rest[0])
	case "import":
		if len(rest) != 1 {
			return errors.New("usage: basis import <file.csv>")
		}
		return importCSV(ctx, store, logger, rest[0])
	case "export":
		return exportBook(ctx, store, logger, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func list(ctx context.Context, store basis.Store, backend string) error {
	records, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("no cost basis records (backend: %s)\n", backend)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MINT\tSYMBOL\tCOST/UNIT USD\tUPDATED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.Mint, rec.Symbol, rec.CostPerUnitUSD.StringFixed(6),
			rec.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d records (backend: %s)\n", len(records), backend)
	return nil
}

func get(ctx context.Context, store basis.Store, mint string) error {
	rec, err := store.Get(ctx, mint)
	if errors.Is(err, basis.ErrNotFound) {
		return fmt.Errorf("no cost basis recorded for %s", mint)
	}
	if err != nil {
		return err
	}

	fmt.Printf("mint:          %s\n", rec.Mint)
	if rec.Symbol != "" && rec.Name != "" {
		fmt.Printf("symbol:        %s (%s)\n", rec.Symbol, rec.Name)
	} else if rec.Symbol != "" {
		fmt.Printf("symbol:        %s\n", rec.Symbol)
	}
	fmt.Printf("cost per unit: $%s\n", rec.CostPerUnitUSD.StringFixed(6))
	fmt.Printf("updated:       %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func set(ctx context.Context, store basis.Store, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errors.New("usage: basis set <mint> <total_usd> <units> [symbol]")
	}

	total, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("total_usd %q is not a number", args[1])
	}
	units, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("units %q is not a number", args[2])
	}

	rec, err := basis.NewRecordFromTotals(args[0], total, units)
	if err != nil {
		return err
	}
	if prev, err := store.Get(ctx, rec.Mint); err == nil {
		rec.Symbol = prev.Symbol
		rec.Name = prev.Name
		rec.LogoURI = prev.LogoURI
	}
	if len(args) == 4 {
		rec.Symbol = args[3]
	}

	if err := store.Put(ctx, rec); err != nil {
		return err
	}
	fmt.Printf("saved %s at $%s/unit\n", rec.Mint, rec.CostPerUnitUSD.StringFixed(6))
	return nil
}

func del(ctx context.Context, store basis.Store, mint string) error {
	if err := store.Delete(ctx, mint); err != nil {
		if errors.Is(err, basis.ErrNotFound) {
			return fmt.Errorf("no cost basis recorded for %s", mint)
		}
		return err
	}
	fmt.Printf("deleted %s\n", mint)
	return nil
}

func importCSV(ctx context.Context, store basis.Store, logger *zap.Logger, path string) error {
	result, err := export.NewBookExporter(logger).ImportCSV(ctx, path, store)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d records\n", result.Imported)
	for _, rejected := range result.Rejected {
		fmt.Fprintf(os.Stderr, "rejected row %d: %s\n", rejected.Row, rejected.Reason)
	}
	if len(result.Rejected) > 0 {
		return fmt.Errorf("%d rows rejected", len(result.Rejected))
	}
	return nil
}

func exportBook(ctx context.Context, store basis.Store, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "Export format: csv or json")
	out := fs.String("out", "exports", "Output directory")
	mint := fs.String("mint", "", "Export a single mint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := store.List(ctx)
	if err != nil {
		return err
	}

	path, err := export.NewBookExporter(logger).ExportRecords(records, export.ExportOptions{
		Format:     export.ExportFormat(*format),
		OutputDir:  *out,
		MintFilter: *mint,
	})
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d records considered)\n", path, len(records))
	return nil
}
