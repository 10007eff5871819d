package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-watchlist/internal/entity"
)

func TestTickerService(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addTicker("MSFT", entity.TickerTypeStock)
	h.store.addTicker("AAPL", entity.TickerTypeStock)
	h.store.addTicker("BTC", entity.TickerTypeCrypto)

	got, err := h.tickers.GetBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "stock", got.Type)

	_, err = h.tickers.GetBySymbol(ctx, "DOGE")
	assert.ErrorIs(t, err, ErrTickerNotFound)

	stocks, err := h.tickers.ListByType(ctx, "STOCK")
	require.NoError(t, err)
	require.Len(t, stocks, 2)
	assert.Equal(t, "AAPL", stocks[0].Symbol)

	all, err := h.tickers.ListByType(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = h.tickers.ListByType(ctx, "bond")
	assert.True(t, IsValidationError(err))
}
