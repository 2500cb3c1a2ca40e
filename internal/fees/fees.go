// Package fees resolves how much of a quote's network fee a specific party
// actually bears, and whether that determination can be trusted.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/quote"
	"github.com/mcintyre94/swapsies/internal/token"
)

// NetworkFee is the resolved share of the network fee for one party.
//
// Known=false means the provider attributed none of the fee components, so
// the amount is unusable ("unable to estimate"). That state is never
// conflated with a legitimate zero fee.
type NetworkFee struct {
	Lamports uint64
	Known    bool
	Gasless  bool
}

// ResolveNetworkFee sums the fee components attributed to party. It never
// fails; missing attribution data is a first-class result state.
//
// Gasless is reported only when the quote declares itself gasless AND the
// resolved fee for the party is exactly zero. An explicit nonzero attributed
// amount is authoritative over a blanket gasless flag.
func ResolveNetworkFee(q *quote.Quote, party string) NetworkFee {
	if q == nil || !q.Fees.Attributed() {
		return NetworkFee{}
	}

	var total uint64
	for _, c := range q.Fees.Components() {
		if c.Payer != "" && c.Payer == party {
			total += c.Lamports
		}
	}

	return NetworkFee{
		Lamports: total,
		Known:    true,
		Gasless:  q.Gasless && total == 0,
	}
}

// SOL returns the fee in SOL display units.
func (f NetworkFee) SOL() decimal.Decimal {
	return token.LamportsToSOL(f.Lamports)
}

// USD converts the fee at the given SOL/USD price.
func (f NetworkFee) USD(solPriceUSD decimal.Decimal) decimal.Decimal {
	return f.SOL().Mul(solPriceUSD)
}
