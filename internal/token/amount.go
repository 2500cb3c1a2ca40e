package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for amounts that are not finite,
	// non-negative numbers in the expected scale.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountTooSmall is returned when a positive display amount floors to
	// zero native units. It wraps ErrInvalidAmount so callers can branch on
	// either.
	ErrAmountTooSmall = fmt.Errorf("%w: below one native unit", ErrInvalidAmount)
)

// ToDisplayAmount converts a native integer amount to display units,
// i.e. native / 10^decimals, without any precision loss.
func ToDisplayAmount(native uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(native), -int32(decimals))
}

// ToNativeAmount converts a display amount to native units, flooring any
// fraction below one native unit. A negative amount is rejected with
// ErrInvalidAmount; a positive amount that floors to zero is rejected with
// ErrAmountTooSmall so the caller never submits a zero-value trade the user
// did not type.
func ToNativeAmount(display decimal.Decimal, decimals uint8) (uint64, error) {
	if display.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, display)
	}

	scaled := display.Shift(int32(decimals)).Floor().BigInt()
	if !scaled.IsUint64() {
		return 0, fmt.Errorf("%w: %s exceeds the native range at %d decimals", ErrInvalidAmount, display, decimals)
	}

	native := scaled.Uint64()
	if native == 0 && display.IsPositive() {
		return 0, fmt.Errorf("%w: %s at %d decimals", ErrAmountTooSmall, display, decimals)
	}
	return native, nil
}

// ParseDisplayAmount parses user-typed text into a positive display amount.
func ParseDisplayAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidAmount, d)
	}
	return d, nil
}

// LamportsToSOL converts lamports to SOL display units.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return ToDisplayAmount(lamports, SOLDecimals)
}
