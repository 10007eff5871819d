package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/synchronizer"
)

type fakeSynchronizer struct {
	mu         sync.Mutex
	calls      []string
	errs       map[string]error
	subscribed map[string]bool
}

func newFakeSynchronizer() *fakeSynchronizer {
	return &fakeSynchronizer{errs: map[string]error{}, subscribed: map[string]bool{}}
}

func (f *fakeSynchronizer) Sync(context.Context, *entity.User, entity.SyncTrigger) ([]string, error) {
	return nil, nil
}

func (f *fakeSynchronizer) Reconcile(_ context.Context, userID string, _ entity.SyncTrigger) (*synchronizer.ReconcileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	if err := f.errs[userID]; err != nil {
		return nil, err
	}
	return &synchronizer.ReconcileResult{UserID: userID, Symbols: []string{"AAPL"}, Subscribed: f.subscribed[userID]}, nil
}

func (f *fakeSynchronizer) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeUsers struct {
	users []entity.User
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	for i := range f.users {
		if f.users[i].UserID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindAllNotificationEnabled(context.Context) ([]entity.User, error) {
	var out []entity.User
	for _, u := range f.users {
		if u.NotificationEnabled {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeUsers) SetNotificationEnabled(context.Context, string, bool) error { return nil }

type fakeSyncLogs struct {
	failed []string
	since  time.Time
}

func (f *fakeSyncLogs) Create(context.Context, *entity.NotificationSyncLog) error { return nil }

func (f *fakeSyncLogs) FindFailedUserIDsSince(_ context.Context, since time.Time) ([]string, error) {
	f.since = since
	return f.failed, nil
}

func (f *fakeSyncLogs) ListByUser(context.Context, string, int) ([]entity.NotificationSyncLog, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}
