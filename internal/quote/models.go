// Package quote models the aggregator swap quote and its normalization into
// validated, decimal-exact form. Normalization is pure: no I/O, no retries.
package quote

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrMalformed marks a quote payload that violates structural invariants
// (negative or non-integer native amounts, negative decimals, negative USD
// valuations). Such payloads are surfaced immediately and never coerced.
var ErrMalformed = errors.New("malformed quote")

// Raw mirrors the aggregator response before validation. Amounts and USD
// valuations stay strings so Normalize owns every structural check instead of
// relying on JSON decoding to reject bad values.
type Raw struct {
	RequestID  string `json:"requestId,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`

	InAmount    string `json:"inAmount"`
	OutAmount   string `json:"outAmount"`
	InDecimals  int    `json:"inputDecimals"`
	OutDecimals int    `json:"outputDecimals"`
	InValueUSD  string `json:"inUsdValue"`
	OutValueUSD string `json:"outUsdValue"`

	PlatformFeeBps  int    `json:"platformFeeBps"`
	PlatformFeeMint string `json:"platformFeeMint,omitempty"`

	NetworkFeeLamports  int64          `json:"networkFeeLamports"`
	FeePayerAttribution RawAttribution `json:"feePayerAttribution"`
	Gasless             bool           `json:"gasless"`

	PriceImpactPct string `json:"priceImpactPct,omitempty"`

	// Inline provider rejection (no route, not enough liquidity). A payload
	// carrying these is still a valid response, not a transport failure.
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// RawAttribution carries the per-component fee payer attribution as sent by
// the provider. A nil component means the provider said nothing about it.
type RawAttribution struct {
	Signature      *RawFeeComponent `json:"signature,omitempty"`
	Prioritization *RawFeeComponent `json:"prioritization,omitempty"`
	Rent           *RawFeeComponent `json:"rent,omitempty"`
}

// RawFeeComponent is one network-fee component. Payer is the base58 address
// the provider attributes the component to; absent means unattributed.
type RawFeeComponent struct {
	AmountLamports int64  `json:"amountLamports"`
	Payer          string `json:"payer,omitempty"`
}

// Quote is the normalized, validated form every calculator consumes.
type Quote struct {
	RequestID  string
	InputMint  string
	OutputMint string

	InAmount    uint64
	OutAmount   uint64
	InDecimals  uint8
	OutDecimals uint8

	// Display-unit amounts, exact (native / 10^decimals).
	InDisplayAmount  decimal.Decimal
	OutDisplayAmount decimal.Decimal

	// USD valuations at quote time. Platform fee effects are already baked in
	// by the provider.
	InValueUSD  decimal.Decimal
	OutValueUSD decimal.Decimal

	PlatformFeeBps  uint16
	PlatformFeeMint string

	NetworkFeeLamports uint64
	Fees               FeeAttribution
	Gasless            bool

	PriceImpactPct decimal.Decimal

	// ProviderError is set when the provider rejected the route inline.
	// The quote is still well-formed; callers show the message and withhold
	// the breakdown.
	ProviderError *ProviderError
}

// ProviderError is an inline rejection issued by the quote provider.
type ProviderError struct {
	Code    string
	Message string
}

// FeeComponent is one share of the network fee after normalization.
// An empty Payer means the provider left the component unattributed.
type FeeComponent struct {
	Lamports uint64
	Payer    string
}

// FeeAttribution groups the three network-fee components.
type FeeAttribution struct {
	Signature      FeeComponent
	Prioritization FeeComponent
	Rent           FeeComponent
}

// Components returns the three fee shares in a fixed order.
func (a FeeAttribution) Components() [3]FeeComponent {
	return [3]FeeComponent{a.Signature, a.Prioritization, a.Rent}
}

// Attributed reports whether any component carries a payer identity.
func (a FeeAttribution) Attributed() bool {
	for _, c := range a.Components() {
		if c.Payer != "" {
			return true
		}
	}
	return false
}
