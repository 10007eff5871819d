package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-watchlist/internal/entity"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSyncLogRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewSyncLogRepository(db)

	base := time.Now().Add(-time.Hour)
	logs := []entity.NotificationSyncLog{
		// u1 failed then recovered
		{UserID: "u1", Trigger: entity.SyncTriggerWatchlistAdd, Status: entity.SyncStatusFailed, CreatedAt: base.Add(1 * time.Minute)},
		{UserID: "u1", Trigger: entity.SyncTriggerReconcile, Status: entity.SyncStatusSucceeded, CreatedAt: base.Add(2 * time.Minute)},
		// u2 still failing
		{UserID: "u2", Trigger: entity.SyncTriggerGlobalToggle, Status: entity.SyncStatusFailed, CreatedAt: base.Add(3 * time.Minute),
			Symbols: pq.StringArray{"AAPL", "TSLA"}, FilterPolicy: datatypes.JSON(`{"ticker":["AAPL","TSLA"]}`), ErrorMessage: "boom"},
		// u3 failed before the window
		{UserID: "u3", Trigger: entity.SyncTriggerTickerToggle, Status: entity.SyncStatusFailed, CreatedAt: base.Add(-2 * time.Hour)},
	}
	for i := range logs {
		require.NoError(t, repo.Create(ctx, &logs[i]))
	}

	ids, err := repo.FindFailedUserIDsSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids)

	u2, err := repo.ListByUser(ctx, "u2", 0)
	require.NoError(t, err)
	require.Len(t, u2, 1)
	assert.Equal(t, []string{"AAPL", "TSLA"}, []string(u2[0].Symbols))
	assert.JSONEq(t, `{"ticker":["AAPL","TSLA"]}`, string(u2[0].FilterPolicy))
	assert.Equal(t, entity.SyncTriggerGlobalToggle, u2[0].Trigger)
}
