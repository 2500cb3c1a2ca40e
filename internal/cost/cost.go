// Package cost derives the true economic cost of a quoted swap for the
// requesting party: value change, platform fee transparency, network fee in
// USD, and the total with its percentage of input value.
package cost

import (
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/fees"
	"github.com/mcintyre94/swapsies/internal/quote"
)

// Breakdown is the per-quote cost summary. Negative ValueChangeUSD and
// TotalCostUSD mean the party comes out behind.
type Breakdown struct {
	// PlatformFeeUSD is reported for transparency only. The provider already
	// bakes the platform fee into the quote's USD valuations, so it is never
	// added to TotalCostUSD again.
	PlatformFeeUSD  decimal.Decimal
	PlatformFeeBps  uint16
	PlatformFeeMint string

	// NetworkFeeUSD is meaningful only when NetworkFeeKnown. Unknown is a
	// distinct state from zero.
	NetworkFeeUSD   decimal.Decimal
	NetworkFeeKnown bool
	Gasless         bool

	ValueChangeUSD decimal.Decimal
	TotalCostUSD   decimal.Decimal

	// TotalCostPercent is nil when the input value is zero. The undefined
	// state is explicit, never NaN or Infinity.
	TotalCostPercent *decimal.Decimal

	PriceImpactPct decimal.Decimal
}

// ComputeBreakdown combines a normalized quote with the party's resolved
// network fee. solPriceUSD is the current USD price of the gas asset; nil
// means the price source is unavailable, which leaves a nonzero fee
// unpriceable (unknown), while a known zero fee stays known.
//
// Pure: identical inputs always produce identical results.
func ComputeBreakdown(q *quote.Quote, fee fees.NetworkFee, solPriceUSD *decimal.Decimal) Breakdown {
	if q == nil {
		return Breakdown{}
	}

	b := Breakdown{
		PlatformFeeBps:  q.PlatformFeeBps,
		PlatformFeeMint: q.PlatformFeeMint,
		Gasless:         fee.Gasless,
		PriceImpactPct:  q.PriceImpactPct,
		ValueChangeUSD:  q.OutValueUSD.Sub(q.InValueUSD),
	}

	if q.PlatformFeeBps > 0 {
		base := q.InValueUSD
		if q.PlatformFeeMint == q.OutputMint {
			base = q.OutValueUSD
		}
		b.PlatformFeeUSD = base.Mul(decimal.New(int64(q.PlatformFeeBps), -4))
	}

	switch {
	case !fee.Known:
		// Attribution missing: the fee contributes nothing to the total and
		// the caller renders "unable to estimate".
	case fee.Lamports == 0:
		b.NetworkFeeKnown = true
	case solPriceUSD == nil:
		// Fee lamports are known but cannot be expressed in USD without a
		// gas price, so the USD figure is unknown.
	default:
		b.NetworkFeeKnown = true
		b.NetworkFeeUSD = fee.USD(*solPriceUSD)
	}

	b.TotalCostUSD = b.ValueChangeUSD.Add(b.NetworkFeeUSD)

	if !q.InValueUSD.IsZero() {
		pct := b.TotalCostUSD.Div(q.InValueUSD).Mul(decimal.NewFromInt(100))
		b.TotalCostPercent = &pct
	}

	return b
}
