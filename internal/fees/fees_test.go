package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mcintyre94/swapsies/internal/quote"
)

const (
	party = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	other = "4Nd1mYvM6K2XhStNnRZqPNkDmcdjNSCMyVfiGGSGNrTp"
)

func TestResolveNetworkFee(t *testing.T) {
	tests := []struct {
		name    string
		fees    quote.FeeAttribution
		gasless bool
		want    NetworkFee
	}{
		{
			name: "all components unattributed means unknown",
			fees: quote.FeeAttribution{
				Signature:      quote.FeeComponent{Lamports: 5000},
				Prioritization: quote.FeeComponent{Lamports: 100000},
			},
			want: NetworkFee{Known: false},
		},
		{
			name: "sums only the party's components",
			fees: quote.FeeAttribution{
				Signature:      quote.FeeComponent{Lamports: 5000, Payer: party},
				Prioritization: quote.FeeComponent{Lamports: 100000, Payer: other},
				Rent:           quote.FeeComponent{Lamports: 2039280, Payer: party},
			},
			want: NetworkFee{Lamports: 2044280, Known: true},
		},
		{
			name: "attributed entirely to others is a known zero",
			fees: quote.FeeAttribution{
				Signature: quote.FeeComponent{Lamports: 5000, Payer: other},
			},
			want: NetworkFee{Lamports: 0, Known: true},
		},
		{
			name: "gasless with known zero fee",
			fees: quote.FeeAttribution{
				Signature: quote.FeeComponent{Lamports: 5000, Payer: other},
			},
			gasless: true,
			want:    NetworkFee{Lamports: 0, Known: true, Gasless: true},
		},
		{
			name: "nonzero attributed amount overrides the gasless flag",
			fees: quote.FeeAttribution{
				Signature: quote.FeeComponent{Lamports: 5000, Payer: party},
			},
			gasless: true,
			want:    NetworkFee{Lamports: 5000, Known: true, Gasless: false},
		},
		{
			name:    "gasless flag alone cannot make an unknown fee known",
			fees:    quote.FeeAttribution{},
			gasless: true,
			want:    NetworkFee{Known: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &quote.Quote{Fees: tt.fees, Gasless: tt.gasless}
			got := ResolveNetworkFee(q, party)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNetworkFeeNilQuote(t *testing.T) {
	got := ResolveNetworkFee(nil, party)
	assert.False(t, got.Known)
	assert.Zero(t, got.Lamports)
}

func TestNetworkFeeUSD(t *testing.T) {
	fee := NetworkFee{Lamports: 5000, Known: true}
	assert.True(t, fee.SOL().Equal(decimal.RequireFromString("0.000005")))

	usd := fee.USD(decimal.NewFromInt(150))
	assert.True(t, usd.Equal(decimal.RequireFromString("0.00075")), "got %s", usd)
}
