package pnl

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/cost"
	"github.com/mcintyre94/swapsies/internal/quote"
)

func usd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sellQuote() *quote.Quote {
	return &quote.Quote{
		InputMint:   "TokenXMint111111111111111111111111111111111",
		OutputMint:  "So11111111111111111111111111111111111111112",
		InValueUSD:  usd("200.00"),
		OutValueUSD: usd("198.50"),
	}
}

func TestComputeScenario(t *testing.T) {
	// $15 per unit, selling 10 units, $0.05 known network fee.
	rec := &basis.Record{Mint: sellQuote().InputMint, CostPerUnitUSD: usd("15.00")}
	b := cost.Breakdown{NetworkFeeUSD: usd("0.05"), NetworkFeeKnown: true}

	res := Compute(rec, sellQuote(), b, decimal.NewFromInt(10))
	require.NotNil(t, res)

	assert.True(t, res.TotalCostBasisUSD.Equal(usd("150.00")), "basis = %s", res.TotalCostBasisUSD)
	assert.True(t, res.RealizedUSD.Equal(usd("48.45")), "realized = %s", res.RealizedUSD)
	require.NotNil(t, res.RealizedPercent)
	assert.True(t, res.RealizedPercent.Equal(usd("32.3")), "percent = %s", res.RealizedPercent)
}

func TestComputeZeroCostBasis(t *testing.T) {
	// Airdropped token: basis of zero is real, the percent is undefined.
	rec := &basis.Record{Mint: sellQuote().InputMint, CostPerUnitUSD: decimal.Zero}
	b := cost.Breakdown{NetworkFeeKnown: true}

	res := Compute(rec, sellQuote(), b, decimal.NewFromInt(10))
	require.NotNil(t, res)
	assert.True(t, res.TotalCostBasisUSD.IsZero())
	assert.True(t, res.RealizedUSD.Equal(usd("198.50")))
	assert.Nil(t, res.RealizedPercent, "zero basis must leave the percent undefined")
}

func TestComputeUnknownFeeContributesNothing(t *testing.T) {
	rec := &basis.Record{Mint: sellQuote().InputMint, CostPerUnitUSD: usd("15.00")}
	b := cost.Breakdown{NetworkFeeUSD: usd("99"), NetworkFeeKnown: false}

	res := Compute(rec, sellQuote(), b, decimal.NewFromInt(10))
	require.NotNil(t, res)
	assert.True(t, res.RealizedUSD.Equal(usd("48.50")), "unknown fee must not reduce proceeds")
}

func TestComputeNoResultStates(t *testing.T) {
	rec := &basis.Record{Mint: sellQuote().InputMint, CostPerUnitUSD: usd("15.00")}
	b := cost.Breakdown{NetworkFeeKnown: true}

	assert.Nil(t, Compute(nil, sellQuote(), b, decimal.NewFromInt(10)), "missing record")
	assert.Nil(t, Compute(rec, nil, b, decimal.NewFromInt(10)), "missing quote")
	assert.Nil(t, Compute(rec, sellQuote(), b, decimal.Zero), "zero amount")
	assert.Nil(t, Compute(rec, sellQuote(), b, decimal.NewFromInt(-1)), "negative amount")

	rejected := sellQuote()
	rejected.ProviderError = &quote.ProviderError{Code: "NO_ROUTE"}
	assert.Nil(t, Compute(rec, rejected, b, decimal.NewFromInt(10)), "provider rejection")
}

func TestComputeDeterministic(t *testing.T) {
	rec := &basis.Record{Mint: sellQuote().InputMint, CostPerUnitUSD: usd("15.00")}
	b := cost.Breakdown{NetworkFeeUSD: usd("0.05"), NetworkFeeKnown: true}

	first := Compute(rec, sellQuote(), b, decimal.NewFromInt(10))
	second := Compute(rec, sellQuote(), b, decimal.NewFromInt(10))
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.True(t, first.RealizedUSD.Equal(second.RealizedUSD))
	assert.True(t, first.RealizedPercent.Equal(*second.RealizedPercent))
}
