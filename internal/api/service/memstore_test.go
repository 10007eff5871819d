package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/internal/synchronizer"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/metrics"
)

type memStore struct {
	mu           sync.Mutex
	users        map[string]*entity.User
	tickers      map[string]*entity.Ticker
	nextTickerID uint
	watchlist    map[string]map[uint]*entity.WatchlistEntry
	articles     map[string]*entity.NewsArticle
	sentiments   map[sentimentKey]*entity.ArticleTickerSentiment
	logs         []entity.NotificationSyncLog
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*entity.User{},
		tickers:    map[string]*entity.Ticker{},
		watchlist:  map[string]map[uint]*entity.WatchlistEntry{},
		articles:   map[string]*entity.NewsArticle{},
		sentiments: map[sentimentKey]*entity.ArticleTickerSentiment{},
	}
}

func (m *memStore) addUser(id string, enabled bool) {
	m.users[id] = &entity.User{UserID: id, Email: id + "@example.com", NotificationEnabled: enabled}
}

func (m *memStore) addTicker(symbol, tickerType string) *entity.Ticker {
	m.nextTickerID++
	t := &entity.Ticker{TickerID: m.nextTickerID, Symbol: symbol, Type: tickerType, CreatedAt: time.Now()}
	m.tickers[symbol] = t
	return t
}

func (m *memStore) tickerByID(id uint) *entity.Ticker {
	for _, t := range m.tickers {
		if t.TickerID == id {
			return t
		}
	}
	return nil
}

type memUsers struct{ *memStore }

func (r memUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindAllNotificationEnabled(context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, u := range r.users {
		if u.NotificationEnabled {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r memUsers) SetNotificationEnabled(_ context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.NotificationEnabled = enabled
	}
	return nil
}

type memTickers struct{ *memStore }

func (r memTickers) FindBySymbol(_ context.Context, symbol string) (*entity.Ticker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickers[symbol]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r memTickers) FindBySymbols(_ context.Context, symbols []string) ([]entity.Ticker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []entity.Ticker
	for _, s := range symbols {
		if t, ok := r.tickers[s]; ok && !seen[s] {
			seen[s] = true
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r memTickers) FindOrCreate(_ context.Context, symbol, tickerType string) (*entity.Ticker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickers[symbol]; ok {
		cp := *t
		return &cp, nil
	}
	cp := *r.addTicker(symbol, tickerType)
	return &cp, nil
}

func (r memTickers) ListByType(_ context.Context, tickerType string) ([]entity.Ticker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Ticker
	for _, t := range r.tickers {
		if tickerType == "" || t.Type == tickerType {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

type memWatchlist struct{ *memStore }

func (r memWatchlist) Find(_ context.Context, userID string, tickerID uint) (*entity.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.watchlist[userID][tickerID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r memWatchlist) Add(_ context.Context, entry *entity.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchlist[entry.UserID] == nil {
		r.watchlist[entry.UserID] = map[uint]*entity.WatchlistEntry{}
	}
	if _, ok := r.watchlist[entry.UserID][entry.TickerID]; ok {
		return repository.ErrDuplicate
	}
	entry.CreatedAt = time.Now()
	cp := *entry
	r.watchlist[entry.UserID][entry.TickerID] = &cp
	return nil
}

func (r memWatchlist) Remove(_ context.Context, userID string, tickerID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchlist[userID][tickerID]; !ok {
		return false, nil
	}
	delete(r.watchlist[userID], tickerID)
	return true, nil
}

func (r memWatchlist) Upsert(_ context.Context, entry *entity.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchlist[entry.UserID] == nil {
		r.watchlist[entry.UserID] = map[uint]*entity.WatchlistEntry{}
	}
	if existing, ok := r.watchlist[entry.UserID][entry.TickerID]; ok {
		existing.NotificationEnabled = entry.NotificationEnabled
		return nil
	}
	entry.CreatedAt = time.Now()
	cp := *entry
	r.watchlist[entry.UserID][entry.TickerID] = &cp
	return nil
}

func (r memWatchlist) ListByUser(_ context.Context, userID string) ([]entity.WatchlistTicker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.WatchlistTicker
	for id, e := range r.watchlist[userID] {
		t := r.tickerByID(id)
		out = append(out, entity.WatchlistTicker{
			UserID: userID, TickerID: id, Symbol: t.Symbol, Type: t.Type,
			NotificationEnabled: e.NotificationEnabled, CreatedAt: e.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

type memArticles struct{ *memStore }

func (r memArticles) Create(_ context.Context, a *entity.NewsArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[a.ArticleID]; ok {
		return repository.ErrDuplicate
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.articles[a.ArticleID] = &cp
	return nil
}

func (r memArticles) CreateIgnoreConflict(_ context.Context, articles []entity.NewsArticle) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range articles {
		if _, ok := r.articles[a.ArticleID]; ok {
			continue
		}
		cp := a
		r.articles[a.ArticleID] = &cp
		n++
	}
	return n, nil
}

func (r memArticles) FindByID(_ context.Context, id string) (*entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r memArticles) FindByIDs(_ context.Context, ids []string) ([]entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.NewsArticle
	for _, id := range ids {
		if a, ok := r.articles[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r memArticles) withTickers(filter func(entity.ArticleTickerSentiment) bool) []entity.NewsArticle {
	var out []entity.NewsArticle
	for _, a := range r.articles {
		cp := *a
		cp.Tickers = nil
		for k, s := range r.sentiments {
			if k.articleID != a.ArticleID || !filter(*s) {
				continue
			}
			row := *s
			row.Ticker = r.tickerByID(s.TickerID)
			cp.Tickers = append(cp.Tickers, row)
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out
}

func (r memArticles) ListWithSentiments(context.Context) ([]entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.withTickers(func(entity.ArticleTickerSentiment) bool { return true }), nil
}

func (r memArticles) ListByTicker(_ context.Context, tickerID uint) ([]entity.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.NewsArticle
	for _, a := range r.withTickers(func(s entity.ArticleTickerSentiment) bool { return s.TickerID == tickerID }) {
		if len(a.Tickers) > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSentiments struct{ *memStore }

func (r memSentiments) Upsert(_ context.Context, s *entity.ArticleTickerSentiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.UpdatedAt = time.Now()
	cp := *s
	r.sentiments[sentimentKey{articleID: s.ArticleID, tickerID: s.TickerID}] = &cp
	return nil
}

func (r memSentiments) BulkUpsert(ctx context.Context, rows []entity.ArticleTickerSentiment) error {
	for i := range rows {
		if err := r.Upsert(ctx, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r memSentiments) ListByArticle(_ context.Context, articleID string) ([]entity.ArticleTickerSentiment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ArticleTickerSentiment
	for k, s := range r.sentiments {
		if k.articleID == articleID {
			row := *s
			row.Ticker = r.tickerByID(s.TickerID)
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker.Symbol < out[j].Ticker.Symbol })
	return out, nil
}

type memSyncLogs struct{ *memStore }

func (r memSyncLogs) Create(_ context.Context, l *entity.NotificationSyncLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

func (r memSyncLogs) FindFailedUserIDsSince(context.Context, time.Time) ([]string, error) {
	return nil, nil
}

func (r memSyncLogs) ListByUser(_ context.Context, userID string, limit int) ([]entity.NotificationSyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.NotificationSyncLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].UserID == userID {
			out = append(out, r.logs[i])
		}
	}
	return out, nil
}

// fakePolicy keeps the last filter pushed per email, like the notification service would.
type fakePolicy struct {
	mu      sync.Mutex
	filters map[string][]string
	pushes  int
	err     error
}

func newFakePolicy() *fakePolicy {
	return &fakePolicy{filters: map[string][]string{}}
}

func (p *fakePolicy) FindSubscriptionArn(_ context.Context, email string) (string, error) {
	return "arn:" + email, nil
}

func (p *fakePolicy) UpdateFilterPolicy(_ context.Context, email string, tickers []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes++
	if p.err != nil {
		return p.err
	}
	p.filters[email] = append([]string(nil), tickers...)
	return nil
}

func (p *fakePolicy) Subscribe(_ context.Context, email string, tickers []string) (string, error) {
	return "PendingConfirmation", nil
}

func (p *fakePolicy) filter(email string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters[email]
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []synchronizer.ReconcileTask
}

func (q *fakeQueue) Enqueue(_ context.Context, task synchronizer.ReconcileTask) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return true, nil
}

func (q *fakeQueue) Release(context.Context, string) error { return nil }

type published struct {
	Ticker, Subject, Message string
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, ticker, subject, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Ticker: ticker, Subject: subject, Message: message})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type harness struct {
	store     *memStore
	policy    *fakePolicy
	queue     *fakeQueue
	publisher *fakePublisher
	alerts    AlertDispatcher
	watchlist WatchlistService
	articles  ArticleService
	tickers   TickerService
}

func newHarness() *harness {
	store := newMemStore()
	policy := newFakePolicy()
	queue := &fakeQueue{}
	publisher := &fakePublisher{}
	log := logger.NewNop()

	syncer := synchronizer.NewSynchronizer(
		memUsers{store}, memWatchlist{store}, memSyncLogs{store},
		policy, queue, nil, metrics.Nop{}, log, synchronizer.Options{},
	)
	alerts := NewAlertDispatcher(publisher, metrics.Nop{}, log, time.Second)

	return &harness{
		store:     store,
		policy:    policy,
		queue:     queue,
		publisher: publisher,
		alerts:    alerts,
		watchlist: NewWatchlistService(memUsers{store}, memTickers{store}, memWatchlist{store}, memSyncLogs{store}, syncer, log),
		articles:  NewArticleService(memArticles{store}, memSentiments{store}, memTickers{store}, alerts, log),
		tickers:   NewTickerService(memTickers{store}, log),
	}
}
