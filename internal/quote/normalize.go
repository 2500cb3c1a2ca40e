package quote

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/token"
)

// Normalize validates a raw payload and converts it into a Quote with exact
// decimal display amounts. Any structural violation returns an error wrapping
// ErrMalformed. Zero amounts are valid and normalize to zero.
//
// A payload carrying an inline provider error is parsed leniently: the
// provider may omit amounts it never computed, and the result is a Quote
// whose ProviderError is set.
func Normalize(raw *Raw) (*Quote, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrMalformed)
	}

	q := &Quote{
		RequestID:  raw.RequestID,
		InputMint:  raw.InputMint,
		OutputMint: raw.OutputMint,
		Gasless:    raw.Gasless,
	}
	if raw.ErrorCode != "" || raw.ErrorMessage != "" {
		q.ProviderError = &ProviderError{Code: raw.ErrorCode, Message: raw.ErrorMessage}
	}
	lenient := q.ProviderError != nil

	if !lenient {
		if raw.InputMint == "" || raw.OutputMint == "" {
			return nil, fmt.Errorf("%w: missing token mint", ErrMalformed)
		}
	}

	var err error
	if q.InAmount, err = parseNative("inAmount", raw.InAmount, lenient); err != nil {
		return nil, err
	}
	if q.OutAmount, err = parseNative("outAmount", raw.OutAmount, lenient); err != nil {
		return nil, err
	}
	if q.InDecimals, err = parseDecimals("inputDecimals", raw.InDecimals); err != nil {
		return nil, err
	}
	if q.OutDecimals, err = parseDecimals("outputDecimals", raw.OutDecimals); err != nil {
		return nil, err
	}
	if q.InValueUSD, err = parseUSD("inUsdValue", raw.InValueUSD, lenient); err != nil {
		return nil, err
	}
	if q.OutValueUSD, err = parseUSD("outUsdValue", raw.OutValueUSD, lenient); err != nil {
		return nil, err
	}

	if raw.PlatformFeeBps < 0 || raw.PlatformFeeBps > 10_000 {
		return nil, fmt.Errorf("%w: platformFeeBps %d out of range", ErrMalformed, raw.PlatformFeeBps)
	}
	q.PlatformFeeBps = uint16(raw.PlatformFeeBps)
	q.PlatformFeeMint = raw.PlatformFeeMint
	if q.PlatformFeeBps > 0 && q.PlatformFeeMint != q.InputMint && q.PlatformFeeMint != q.OutputMint {
		return nil, fmt.Errorf("%w: platform fee mint %q is neither input nor output token", ErrMalformed, q.PlatformFeeMint)
	}

	if raw.NetworkFeeLamports < 0 {
		return nil, fmt.Errorf("%w: negative networkFeeLamports %d", ErrMalformed, raw.NetworkFeeLamports)
	}
	q.NetworkFeeLamports = uint64(raw.NetworkFeeLamports)

	if q.Fees.Signature, err = parseComponent("signature", raw.FeePayerAttribution.Signature); err != nil {
		return nil, err
	}
	if q.Fees.Prioritization, err = parseComponent("prioritization", raw.FeePayerAttribution.Prioritization); err != nil {
		return nil, err
	}
	if q.Fees.Rent, err = parseComponent("rent", raw.FeePayerAttribution.Rent); err != nil {
		return nil, err
	}

	if raw.PriceImpactPct != "" {
		q.PriceImpactPct, err = decimal.NewFromString(raw.PriceImpactPct)
		if err != nil {
			return nil, fmt.Errorf("%w: priceImpactPct %q is not a decimal", ErrMalformed, raw.PriceImpactPct)
		}
	}

	q.InDisplayAmount = token.ToDisplayAmount(q.InAmount, q.InDecimals)
	q.OutDisplayAmount = token.ToDisplayAmount(q.OutAmount, q.OutDecimals)

	return q, nil
}

func parseNative(field, s string, lenient bool) (uint64, error) {
	if s == "" {
		if lenient {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: missing %s", ErrMalformed, field)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a non-negative integer", ErrMalformed, field, s)
	}
	return n, nil
}

func parseDecimals(field string, v int) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %s %d out of range", ErrMalformed, field, v)
	}
	return uint8(v), nil
}

func parseUSD(field, s string, lenient bool) (decimal.Decimal, error) {
	if s == "" {
		if lenient {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("%w: missing %s", ErrMalformed, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal", ErrMalformed, field, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s %s", ErrMalformed, field, d)
	}
	return d, nil
}

func parseComponent(name string, c *RawFeeComponent) (FeeComponent, error) {
	if c == nil {
		return FeeComponent{}, nil
	}
	if c.AmountLamports < 0 {
		return FeeComponent{}, fmt.Errorf("%w: negative %s fee %d lamports", ErrMalformed, name, c.AmountLamports)
	}
	return FeeComponent{Lamports: uint64(c.AmountLamports), Payer: c.Payer}, nil
}
