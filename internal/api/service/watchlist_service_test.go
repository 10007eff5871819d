package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/utils"
)

const alice = "alice"

func TestWatchlistService_FilterFollowsStore(t *testing.T) {
	h := newHarness()
	h.store.addUser(alice, true)
	h.store.addTicker("AAPL", entity.TickerTypeStock)
	h.store.addTicker("MSFT", entity.TickerTypeStock)
	ctx := context.Background()

	_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, h.policy.filter("alice@example.com"))

	_, err = h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, h.policy.filter("alice@example.com"))

	_, err = h.watchlist.RemoveFromWatchlist(ctx, alice, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, h.policy.filter("alice@example.com"))

	rows, err := h.watchlist.GetWatchlist(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MSFT", rows[0].Symbol)
}

func TestWatchlistService_AddToWatchlist(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown symbol without type", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, true)

		_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "NVDA"})
		assert.True(t, IsValidationError(err))
		assert.Zero(t, h.policy.pushes)
	})

	t.Run("unknown symbol with type creates ticker", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, true)

		resp, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{
			Symbol: "BTC",
			Type:   utils.ToPointer("crypto"),
		})
		require.NoError(t, err)
		assert.Equal(t, "crypto", resp.Type)
		assert.True(t, resp.NotificationEnabled)
		assert.Equal(t, []string{"BTC"}, h.policy.filter("alice@example.com"))
	})

	t.Run("invalid type", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, true)

		_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{
			Symbol: "BTC",
			Type:   utils.ToPointer("bond"),
		})
		assert.True(t, IsValidationError(err))
	})

	t.Run("duplicate", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, true)
		h.store.addTicker("AAPL", entity.TickerTypeStock)

		_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
		require.NoError(t, err)
		_, err = h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
		assert.ErrorIs(t, err, ErrDuplicateWatchlistEntry)
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newHarness()
		h.store.addTicker("AAPL", entity.TickerTypeStock)

		_, err := h.watchlist.AddToWatchlist(ctx, "ghost", &dto.AddWatchlistRequest{Symbol: "AAPL"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("notifications off does not push", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, false)
		h.store.addTicker("AAPL", entity.TickerTypeStock)

		_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
		require.NoError(t, err)
		assert.Zero(t, h.policy.pushes)
	})

	t.Run("push failure surfaces and queues reconcile", func(t *testing.T) {
		h := newHarness()
		h.store.addUser(alice, true)
		h.store.addTicker("AAPL", entity.TickerTypeStock)
		h.policy.err = errors.New("throttled")

		_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
		var syncErr *synchronizer.SyncError
		require.ErrorAs(t, err, &syncErr)
		assert.Len(t, h.queue.tasks, 1)

		// the store write is kept so a reconcile can converge on it
		entry, err := memWatchlist{h.store}.Find(ctx, alice, 1)
		require.NoError(t, err)
		assert.NotNil(t, entry)
	})
}

func TestWatchlistService_RemoveFromWatchlist(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addUser(alice, true)
	h.store.addTicker("AAPL", entity.TickerTypeStock)

	_, err := h.watchlist.RemoveFromWatchlist(ctx, alice, "TSLA")
	assert.ErrorIs(t, err, ErrTickerNotFound)

	_, err = h.watchlist.RemoveFromWatchlist(ctx, alice, "AAPL")
	assert.ErrorIs(t, err, ErrWatchlistEntryNotFound)

	_, err = h.watchlist.RemoveFromWatchlist(ctx, alice, "  ")
	assert.True(t, IsValidationError(err))
}

func TestWatchlistService_SetGlobalNotification(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addUser(alice, true)
	h.store.addTicker("AAPL", entity.TickerTypeStock)

	_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
	require.NoError(t, err)

	resp, err := h.watchlist.SetGlobalNotification(ctx, alice, &dto.SetNotificationsRequest{Enabled: utils.ToPointer(false)})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{common.FilterPolicyNoMatch}, h.policy.filter("alice@example.com"))
	assert.False(t, h.store.users[alice].NotificationEnabled)

	_, err = h.watchlist.SetGlobalNotification(ctx, alice, &dto.SetNotificationsRequest{Enabled: utils.ToPointer(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, h.policy.filter("alice@example.com"))

	_, err = h.watchlist.SetGlobalNotification(ctx, alice, &dto.SetNotificationsRequest{})
	assert.True(t, IsValidationError(err))
}

func TestWatchlistService_SetTickerNotification(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addUser(alice, true)
	h.store.addTicker("AAPL", entity.TickerTypeStock)
	h.store.addTicker("MSFT", entity.TickerTypeStock)

	_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	_, err = h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "MSFT"})
	require.NoError(t, err)

	resp, err := h.watchlist.SetTickerNotification(ctx, alice, "AAPL", &dto.SetTickerNotificationRequest{Enabled: utils.ToPointer(false)})
	require.NoError(t, err)
	assert.False(t, resp.NotificationEnabled)
	assert.Equal(t, []string{"MSFT"}, h.policy.filter("alice@example.com"))

	// toggling a symbol that is not yet watched adds it
	h.store.addTicker("NVDA", entity.TickerTypeStock)
	resp, err = h.watchlist.SetTickerNotification(ctx, alice, "NVDA", &dto.SetTickerNotificationRequest{Enabled: utils.ToPointer(true)})
	require.NoError(t, err)
	assert.True(t, resp.NotificationEnabled)
	assert.Equal(t, []string{"MSFT", "NVDA"}, h.policy.filter("alice@example.com"))

	_, err = h.watchlist.SetTickerNotification(ctx, alice, "AAPL", &dto.SetTickerNotificationRequest{})
	assert.True(t, IsValidationError(err))
}

func TestWatchlistService_GetNotificationHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.store.addUser(alice, true)
	h.store.addTicker("AAPL", entity.TickerTypeStock)
	h.store.addTicker("MSFT", entity.TickerTypeStock)

	_, err := h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	h.policy.err = errors.New("throttled")
	_, err = h.watchlist.AddToWatchlist(ctx, alice, &dto.AddWatchlistRequest{Symbol: "MSFT"})
	require.Error(t, err)

	history, err := h.watchlist.GetNotificationHistory(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.SyncStatusFailed, history[0].Status)
	assert.Equal(t, []string{"AAPL", "MSFT"}, history[0].Symbols)
	require.NotNil(t, history[0].ErrorMessage)
	assert.Contains(t, *history[0].ErrorMessage, "throttled")
	assert.Equal(t, entity.SyncStatusSucceeded, history[1].Status)
	assert.Nil(t, history[1].ErrorMessage)
	assert.Equal(t, entity.SyncTriggerWatchlistAdd.String(), history[1].Trigger)

	history, err = h.watchlist.GetNotificationHistory(ctx, alice, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = h.watchlist.GetNotificationHistory(ctx, alice, -1)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = h.watchlist.GetNotificationHistory(ctx, "nobody", 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
