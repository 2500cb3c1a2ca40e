package basis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "TokenXMint111111111111111111111111111111111"

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     *Record
		wantErr bool
	}{
		{"valid", &Record{Mint: testMint, CostPerUnitUSD: decimal.RequireFromString("15")}, false},
		{"zero cost is a real basis", &Record{Mint: testMint, CostPerUnitUSD: decimal.Zero}, false},
		{"nil record", nil, true},
		{"empty mint", &Record{CostPerUnitUSD: decimal.NewFromInt(1)}, true},
		{"negative cost", &Record{Mint: testMint, CostPerUnitUSD: decimal.NewFromInt(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewRecordFromTotals(t *testing.T) {
	rec, err := NewRecordFromTotals(testMint, decimal.RequireFromString("150"), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, rec.CostPerUnitUSD.Equal(decimal.NewFromInt(15)), "cost per unit = %s", rec.CostPerUnitUSD)
	assert.False(t, rec.UpdatedAt.IsZero())

	_, err = NewRecordFromTotals(testMint, decimal.NewFromInt(150), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewRecordFromTotals(testMint, decimal.NewFromInt(150), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewRecordFromTotals(testMint, decimal.NewFromInt(-1), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewRecordFromTotals("", decimal.NewFromInt(150), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRecordCSVRoundTrip(t *testing.T) {
	rec := &Record{
		Mint:           testMint,
		Symbol:         "TKX",
		Name:           "Token X",
		CostPerUnitUSD: decimal.RequireFromString("15.00"),
		LogoURI:        "https://example.com/tkx.png",
		UpdatedAt:      time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	back, err := RecordFromCSV(rec.ToCSV())
	require.NoError(t, err)
	assert.Equal(t, rec.Mint, back.Mint)
	assert.Equal(t, rec.Symbol, back.Symbol)
	assert.True(t, back.CostPerUnitUSD.Equal(rec.CostPerUnitUSD))
	assert.True(t, back.UpdatedAt.Equal(rec.UpdatedAt))
}

func TestRecordFromCSV(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		wantErr bool
	}{
		{"minimal four columns", []string{testMint, "TKX", "Token X", "1.5"}, false},
		{"too few columns", []string{testMint, "TKX"}, true},
		{"bad cost", []string{testMint, "TKX", "Token X", "cheap"}, true},
		{"negative cost", []string{testMint, "TKX", "Token X", "-1"}, true},
		{"empty mint", []string{"", "TKX", "Token X", "1.5"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := RecordFromCSV(tt.row)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			require.NoError(t, err)
			assert.False(t, rec.UpdatedAt.IsZero(), "missing timestamp falls back to import time")
		})
	}
}
