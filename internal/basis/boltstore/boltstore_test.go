package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/basis"
)

const (
	mintX = "TokenXMint111111111111111111111111111111111"
	mintY = "TokenYMint111111111111111111111111111111111"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "basis.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.RequireFromString("15.00"), Symbol: "TKX"}
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	assert.Equal(t, mintX, got.Mint)
	assert.True(t, got.CostPerUnitUSD.Equal(rec.CostPerUnitUSD), "cost survives the JSON round trip")
	assert.Equal(t, "TKX", got.Symbol)
}

func TestStoreGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), mintX)
	assert.ErrorIs(t, err, basis.ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(1)}))
	require.NoError(t, s.Delete(ctx, mintX))

	_, err := s.Get(ctx, mintX)
	assert.ErrorIs(t, err, basis.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, mintX), basis.ErrNotFound)
}

func TestStoreListSorted(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintY, CostPerUnitUSD: decimal.NewFromInt(2)}))
	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(1)}))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, mintX, recs[0].Mint)
	assert.Equal(t, mintY, recs[1].Mint)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "basis.db")

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.RequireFromString("0.37")}))
	require.NoError(t, s.Close())

	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, mintX)
	require.NoError(t, err)
	assert.True(t, got.CostPerUnitUSD.Equal(decimal.RequireFromString("0.37")))
}

func TestStorePutRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	err := s.Put(context.Background(), &basis.Record{Mint: mintX, CostPerUnitUSD: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, basis.ErrInvalidRecord)
}
