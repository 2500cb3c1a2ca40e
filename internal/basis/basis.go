// Package basis defines the cost-basis book: a single blended average cost
// per token, plus the Store contract its persistence backends implement.
// There is no tax-lot accounting here; one record per mint, globally.
package basis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no record exists for a mint.
	ErrNotFound = errors.New("cost basis not found")

	// ErrInvalidRecord is returned for records that fail validation.
	ErrInvalidRecord = errors.New("invalid cost basis record")
)

// Record is the stored average cost for one token.
type Record struct {
	Mint           string          `json:"mint"`
	CostPerUnitUSD decimal.Decimal `json:"costPerUnitUsd"`
	Symbol         string          `json:"symbol,omitempty"`
	Name           string          `json:"name,omitempty"`
	LogoURI        string          `json:"logoUri,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Validate checks the structural invariants. A zero cost per unit is valid:
// airdropped tokens have a real basis of zero.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if r.Mint == "" {
		return fmt.Errorf("%w: empty mint", ErrInvalidRecord)
	}
	if r.CostPerUnitUSD.IsNegative() {
		return fmt.Errorf("%w: negative cost per unit %s", ErrInvalidRecord, r.CostPerUnitUSD)
	}
	return nil
}

// NewRecordFromTotals derives the blended average cost from the total spent
// and the units acquired.
func NewRecordFromTotals(mint string, totalUSD, units decimal.Decimal) (*Record, error) {
	if mint == "" {
		return nil, fmt.Errorf("%w: empty mint", ErrInvalidRecord)
	}
	if units.Sign() <= 0 {
		return nil, fmt.Errorf("%w: units must be positive, got %s", ErrInvalidRecord, units)
	}
	if totalUSD.IsNegative() {
		return nil, fmt.Errorf("%w: negative total %s", ErrInvalidRecord, totalUSD)
	}
	return &Record{
		Mint:           mint,
		CostPerUnitUSD: totalUSD.Div(units),
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

// Store persists cost-basis records keyed by mint. Put upserts. Get and
// Delete return ErrNotFound for unknown mints. List returns records sorted
// by mint so exports are deterministic.
type Store interface {
	Get(ctx context.Context, mint string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, mint string) error
	List(ctx context.Context) ([]*Record, error)
	Close() error
}
