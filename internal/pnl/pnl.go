// Package pnl estimates the realized gain or loss of a prospective swap
// against the stored average cost basis of the token being sold.
package pnl

import (
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/cost"
	"github.com/mcintyre94/swapsies/internal/quote"
)

// Result is the estimated realized outcome of executing the quoted swap.
type Result struct {
	CostPerUnitUSD    decimal.Decimal
	TotalCostBasisUSD decimal.Decimal
	RealizedUSD       decimal.Decimal

	// RealizedPercent is nil when the total cost basis is zero (airdropped
	// tokens). Undefined, never Infinity.
	RealizedPercent *decimal.Decimal
}

// Compute returns the gain/loss estimate, or nil when there is nothing to
// show: no cost-basis record, no usable quote, or a non-positive trade
// amount. A nil result is a normal state, not an error; the caller prompts
// the user to add a cost basis.
//
// The network fee reduces proceeds only when it is known; platform fees are
// already embedded in the quote's output valuation.
func Compute(rec *basis.Record, q *quote.Quote, b cost.Breakdown, amount decimal.Decimal) *Result {
	if rec == nil || q == nil || q.ProviderError != nil || amount.Sign() <= 0 {
		return nil
	}

	feeUSD := decimal.Zero
	if b.NetworkFeeKnown {
		feeUSD = b.NetworkFeeUSD
	}

	totalBasis := rec.CostPerUnitUSD.Mul(amount)
	realized := q.OutValueUSD.Sub(feeUSD).Sub(totalBasis)

	res := &Result{
		CostPerUnitUSD:    rec.CostPerUnitUSD,
		TotalCostBasisUSD: totalBasis,
		RealizedUSD:       realized,
	}
	if totalBasis.IsPositive() {
		pct := realized.Div(totalBasis).Mul(decimal.NewFromInt(100))
		res.RealizedPercent = &pct
	}
	return res
}
