package synchronizer

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang-stock-watchlist/internal/entity"
)

type fakeUsers struct {
	users map[string]*entity.User
	err   error
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindAllNotificationEnabled(_ context.Context) ([]entity.User, error) {
	var out []entity.User
	for _, u := range f.users {
		if u.NotificationEnabled {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeUsers) SetNotificationEnabled(_ context.Context, id string, enabled bool) error {
	f.users[id].NotificationEnabled = enabled
	return nil
}

type fakeWatchlist struct {
	rows map[string][]entity.WatchlistTicker
	err  error
}

func (f *fakeWatchlist) Find(context.Context, string, uint) (*entity.WatchlistEntry, error) {
	return nil, nil
}
func (f *fakeWatchlist) Add(context.Context, *entity.WatchlistEntry) error    { return nil }
func (f *fakeWatchlist) Remove(context.Context, string, uint) (bool, error)   { return true, nil }
func (f *fakeWatchlist) Upsert(context.Context, *entity.WatchlistEntry) error { return nil }
func (f *fakeWatchlist) ListByUser(_ context.Context, userID string) ([]entity.WatchlistTicker, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[userID], nil
}

type fakeSyncLogs struct {
	mu   sync.Mutex
	logs []entity.NotificationSyncLog
}

func (f *fakeSyncLogs) Create(ctx context.Context, l *entity.NotificationSyncLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeSyncLogs) FindFailedUserIDsSince(context.Context, time.Time) ([]string, error) {
	return nil, nil
}

func (f *fakeSyncLogs) ListByUser(context.Context, string, int) ([]entity.NotificationSyncLog, error) {
	return nil, nil
}

type policyCall struct {
	Email   string
	Tickers []string
}

type fakePolicy struct {
	mu         sync.Mutex
	arns       map[string]string
	updates    []policyCall
	subscribes []policyCall
	updateErr  error
	// hang blocks UpdateFilterPolicy until the caller's context ends.
	hang bool
}

func (f *fakePolicy) FindSubscriptionArn(_ context.Context, email string) (string, error) {
	return f.arns[email], nil
}

func (f *fakePolicy) UpdateFilterPolicy(ctx context.Context, email string, tickers []string) error {
	if f.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, policyCall{Email: email, Tickers: tickers})
	return f.updateErr
}

func (f *fakePolicy) Subscribe(_ context.Context, email string, tickers []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes = append(f.subscribes, policyCall{Email: email, Tickers: tickers})
	return "PendingConfirmation", nil
}

type fakeQueue struct {
	tasks []ReconcileTask
}

func (f *fakeQueue) Enqueue(_ context.Context, task ReconcileTask) (bool, error) {
	f.tasks = append(f.tasks, task)
	return true, nil
}

func (f *fakeQueue) Release(context.Context, string) error { return nil }

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.messages = append(f.messages, text)
	return nil
}
