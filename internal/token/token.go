// Package token defines token identity and amount-scale conversions shared by
// every calculator and collaborator in swapsies.
package token

const (
	// LamportsPerSOL is the number of lamports in one SOL.
	LamportsPerSOL = 1_000_000_000

	// SOLDecimals is the decimal scale of the native gas asset.
	SOLDecimals = 9

	// WSOLMint is the wrapped SOL mint, used to price network fees in USD.
	WSOLMint = "So11111111111111111111111111111111111111112"
)

// Token identifies an SPL token and carries the metadata the UI renders.
// Field tags follow the aggregator token API payload.
type Token struct {
	Mint     string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}
