package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-cache-service/internal/application/normalizer"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/domain/interfaces"
)

func TestMockSource_FetchTickers(t *testing.T) {
	src := NewMockSource()
	src.SetVariance(0)

	raws, err := src.FetchTickers(context.Background(), interfaces.TickerRequest{
		IDs:       []string{"btc", "DOGE", "ETH"},
		Currency:  "eur",
		Intervals: []string{"1d"},
	})
	require.NoError(t, err)
	require.Len(t, raws, 2, "unknown ids are omitted")

	rec := normalizer.New(normalizer.TickerShape()).Normalize(raws[0])
	assert.Equal(t, "btc", rec.ID, "the id comes back as requested; the cache folds it")
	require.True(t, rec.CurrentPrice.Valid)
	assert.Equal(t, "59800", rec.CurrentPrice.Decimal.String())
	require.NotNil(t, rec.Rank)
	assert.Equal(t, int64(1), *rec.Rank)
	assert.True(t, rec.DeltaPct24h.Valid)
	assert.False(t, rec.DeltaPct1h.Valid, "only requested windows are generated")
}

func TestMockSource_AcceptsNameIDsForSupplyShape(t *testing.T) {
	src := NewMockSource()
	src.SetVariance(0)

	raws, err := src.FetchTickers(context.Background(), interfaces.TickerRequest{
		IDs:      []string{"bitcoin", "Ethereum", "nope"},
		Currency: "usd",
	})
	require.NoError(t, err)
	require.Len(t, raws, 2)

	norm := normalizer.New(normalizer.SupplyShape())
	first := norm.Normalize(raws[0])
	assert.Equal(t, "bitcoin", first.ID)
	require.NotNil(t, first.Symbol)
	assert.Equal(t, "BTC", *first.Symbol)
	assert.Equal(t, "Ethereum", norm.Normalize(raws[1]).ID)
}

func TestMockSource_AddAssetAndVariance(t *testing.T) {
	src := NewMockSource()
	src.addAsset("doge", "Dogecoin", 0.1)
	src.SetVariance(0.5)

	for i := 0; i < 20; i++ {
		raws, err := src.FetchTickers(context.Background(), interfaces.TickerRequest{IDs: []string{"DOGE"}, Currency: "USD"})
		require.NoError(t, err)
		require.Len(t, raws, 1)

		rec := normalizer.New(normalizer.TickerShape()).Normalize(raws[0])
		price := rec.CurrentPrice.Decimal.InexactFloat64()
		assert.GreaterOrEqual(t, price, 0.05)
		assert.LessOrEqual(t, price, 0.15)
	}
}

func TestMockSource_Errors(t *testing.T) {
	src := NewMockSource()

	_, err := src.FetchTickers(context.Background(), interfaces.TickerRequest{IDs: []string{"BTC"}, Currency: "jpy"})
	require.Error(t, err)
	assert.Equal(t, failures.KindStatus, failures.Classify(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchTickers(ctx, interfaces.TickerRequest{IDs: []string{"BTC"}, Currency: "usd"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failures.ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}
