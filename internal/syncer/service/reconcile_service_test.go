package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/syncer/config"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/common"
	"golang-stock-watchlist/pkg/logger"
)

type reconcileFixture struct {
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	queue    synchronizer.ReconcileQueue
	sync     *fakeSynchronizer
	notifier *fakeNotifier
	svc      ReconcileService
}

func newReconcileFixture(t *testing.T, maxRetry int) *reconcileFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.XGroupCreateMkStream(context.Background(), common.RedisStreamWatchlistReconcile, common.RedisStreamGroup, "0").Err())

	cfg := &config.Config{Syncer: config.Syncer{
		StreamBlock:      50 * time.Millisecond,
		ReconcileTimeout: time.Second,
		StreamMaxRetry:   maxRetry,
	}}
	f := &reconcileFixture{
		mr:       mr,
		rdb:      rdb,
		queue:    synchronizer.NewRedisReconcileQueue(rdb, time.Hour, 0),
		sync:     newFakeSynchronizer(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewReconcileService(cfg, rdb, f.sync, f.queue, f.notifier, logger.NewNop())
	return f
}

func (f *reconcileFixture) enqueue(t *testing.T, userID string) {
	t.Helper()
	ok, err := f.queue.Enqueue(context.Background(), synchronizer.ReconcileTask{
		UserID:  userID,
		Trigger: entity.SyncTriggerWatchlistAdd,
		Reason:  "throttled",
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *reconcileFixture) pending(t *testing.T) int64 {
	t.Helper()
	res, err := f.rdb.XPending(context.Background(), common.RedisStreamWatchlistReconcile, common.RedisStreamGroup).Result()
	require.NoError(t, err)
	return res.Count
}

func pendingMarker(userID string) string {
	return fmt.Sprintf(common.RedisKeyReconcilePending, userID)
}

func TestReconcileService_ProcessTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success acknowledges and releases", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.enqueue(t, "alice")

		f.svc.ProcessTask(ctx)

		assert.Equal(t, []string{"alice"}, f.sync.called())
		assert.Zero(t, f.pending(t))
		assert.False(t, f.mr.Exists(pendingMarker("alice")))
	})

	t.Run("failure leaves task pending", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.sync.errs["alice"] = errors.New("throttled again")
		f.enqueue(t, "alice")

		f.svc.ProcessTask(ctx)

		assert.Equal(t, int64(1), f.pending(t))
		assert.True(t, f.mr.Exists(pendingMarker("alice")))
	})

	t.Run("unknown user is dropped", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.sync.errs["ghost"] = fmt.Errorf("%w: ghost", synchronizer.ErrUserNotFound)
		f.enqueue(t, "ghost")

		f.svc.ProcessTask(ctx)

		assert.Zero(t, f.pending(t))
		assert.False(t, f.mr.Exists(pendingMarker("ghost")))
	})

	t.Run("malformed message is acknowledged", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		require.NoError(t, f.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: common.RedisStreamWatchlistReconcile,
			Values: map[string]interface{}{"payload": "not json"},
		}).Err())

		f.svc.ProcessTask(ctx)

		assert.Empty(t, f.sync.called())
		assert.Zero(t, f.pending(t))
	})

	t.Run("empty stream", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.svc.ProcessTask(ctx)
		assert.Empty(t, f.sync.called())
	})
}

func TestReconcileService_ProcessRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("retry succeeds", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.sync.errs["alice"] = errors.New("throttled again")
		f.enqueue(t, "alice")
		f.svc.ProcessTask(ctx)
		require.Equal(t, int64(1), f.pending(t))

		delete(f.sync.errs, "alice")
		f.svc.ProcessRetries(ctx)

		assert.Equal(t, []string{"alice", "alice"}, f.sync.called())
		assert.Zero(t, f.pending(t))
		assert.False(t, f.mr.Exists(pendingMarker("alice")))
		assert.Empty(t, f.notifier.messages)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		f := newReconcileFixture(t, 0)
		f.sync.errs["alice"] = errors.New("throttled again")
		f.enqueue(t, "alice")
		f.svc.ProcessTask(ctx)

		f.svc.ProcessRetries(ctx)

		assert.Equal(t, []string{"alice"}, f.sync.called())
		assert.Zero(t, f.pending(t))
		assert.False(t, f.mr.Exists(pendingMarker("alice")))
		require.Len(t, f.notifier.messages, 1)
		assert.Contains(t, f.notifier.messages[0], "reconcile gave up")
	})

	t.Run("nothing pending", func(t *testing.T) {
		f := newReconcileFixture(t, 5)
		f.svc.ProcessRetries(ctx)
		assert.Empty(t, f.sync.called())
	})
}
