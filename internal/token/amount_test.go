package token

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplayAmount(t *testing.T) {
	tests := []struct {
		name     string
		native   uint64
		decimals uint8
		want     string
	}{
		{"one SOL", 1_000_000_000, 9, "1"},
		{"fractional USDC", 1_234_567, 6, "1.234567"},
		{"single lamport", 1, 9, "0.000000001"},
		{"zero", 0, 6, "0"},
		{"zero decimals", 42, 0, "42"},
		{"max uint64", math.MaxUint64, 0, "18446744073709551615"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDisplayAmount(tt.native, tt.decimals)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestToNativeAmount(t *testing.T) {
	tests := []struct {
		name     string
		display  string
		decimals uint8
		want     uint64
		wantErr  error
	}{
		{"whole units", "1", 9, 1_000_000_000, nil},
		{"floors sub-unit fraction", "1.2345678", 6, 1_234_567, nil},
		{"exact fraction", "0.000001", 6, 1, nil},
		{"zero is allowed", "0", 6, 0, nil},
		{"zero decimals keeps integer", "42", 0, 42, nil},
		{"below one native unit", "0.0000000001", 6, 0, ErrAmountTooSmall},
		{"negative", "-1", 6, 0, ErrInvalidAmount},
		{"exceeds uint64 range", "98765432109876543210", 6, 0, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToNativeAmount(decimal.RequireFromString(tt.display), tt.decimals)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToNativeAmountTooSmallIsInvalid(t *testing.T) {
	// The too-small sentinel must also satisfy the broader invalid-amount
	// check so callers can branch on either.
	_, err := ToNativeAmount(decimal.RequireFromString("0.0000000001"), 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAmountTooSmall))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestAmountRoundTrip(t *testing.T) {
	// A native amount survives the display round trip bit-for-bit.
	const native = uint64(987_654_321)
	display := ToDisplayAmount(native, 9)
	back, err := ToNativeAmount(display, 9)
	require.NoError(t, err)
	assert.Equal(t, native, back)

	// Conversions are deterministic: repeating them yields identical results.
	again := ToDisplayAmount(native, 9)
	assert.True(t, display.Equal(again))
}

func TestParseDisplayAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "1.5", "1.5", false},
		{"trims whitespace", " 0.25 ", "0.25", false},
		{"rejects text", "abc", "", true},
		{"rejects empty", "", "", true},
		{"rejects zero", "0", "", true},
		{"rejects negative", "-0.5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplayAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestLamportsToSOL(t *testing.T) {
	assert.True(t, LamportsToSOL(LamportsPerSOL).Equal(decimal.NewFromInt(1)))
	assert.True(t, LamportsToSOL(5_000).Equal(decimal.RequireFromString("0.000005")))
}
