package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcintyre94/swapsies/internal/basis"
)

const (
	mintX = "TokenXMint111111111111111111111111111111111"
	mintY = "TokenYMint111111111111111111111111111111111"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec := &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.RequireFromString("15.00"), Symbol: "TKX"}
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	assert.Equal(t, mintX, got.Mint)
	assert.True(t, got.CostPerUnitUSD.Equal(rec.CostPerUnitUSD))
	assert.Equal(t, "TKX", got.Symbol)
}

func TestStoreGetMissing(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), mintX)
	assert.ErrorIs(t, err, basis.ErrNotFound)
}

func TestStorePutUpserts(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(10)}))
	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(12)}))

	got, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	assert.True(t, got.CostPerUnitUSD.Equal(decimal.NewFromInt(12)))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestStorePutRejectsInvalid(t *testing.T) {
	s := New()
	err := s.Put(context.Background(), &basis.Record{Mint: "", CostPerUnitUSD: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, basis.ErrInvalidRecord)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(1)}))
	require.NoError(t, s.Delete(ctx, mintX))

	_, err := s.Get(ctx, mintX)
	assert.ErrorIs(t, err, basis.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, mintX), basis.ErrNotFound)
}

func TestStoreListSorted(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintY, CostPerUnitUSD: decimal.NewFromInt(2)}))
	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(1)}))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, mintX, recs[0].Mint)
	assert.Equal(t, mintY, recs[1].Mint)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(10)}))

	got, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	got.Symbol = "MUTATED"

	again, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	assert.Empty(t, again.Symbol, "mutating a returned record must not touch the store")
}
