package basis

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CSVHeaders returns the column layout used by cost-basis CSV files.
// CSV format: mint,symbol,name,cost_per_unit_usd,logo_uri,updated_at
func CSVHeaders() []string {
	return []string{"mint", "symbol", "name", "cost_per_unit_usd", "logo_uri", "updated_at"}
}

// ToCSV renders the record as one data row in CSVHeaders order.
func (r *Record) ToCSV() []string {
	updated := ""
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{r.Mint, r.Symbol, r.Name, r.CostPerUnitUSD.String(), r.LogoURI, updated}
}

// RecordFromCSV parses one data row. The first four columns are required;
// logo_uri and updated_at are optional. A missing or unparseable timestamp
// falls back to the import time.
func RecordFromCSV(row []string) (*Record, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 columns, got %d", ErrInvalidRecord, len(row))
	}

	cost, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return nil, fmt.Errorf("%w: cost_per_unit_usd %q is not a decimal", ErrInvalidRecord, row[3])
	}

	rec := &Record{
		Mint:           strings.TrimSpace(row[0]),
		Symbol:         strings.TrimSpace(row[1]),
		Name:           strings.TrimSpace(row[2]),
		CostPerUnitUSD: cost,
	}
	if len(row) > 4 {
		rec.LogoURI = strings.TrimSpace(row[4])
	}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[5])); err == nil {
			rec.UpdatedAt = ts
		}
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
