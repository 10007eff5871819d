package http

import (
	"context"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/api/service"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/utils"
)

type fakeAuth struct {
	sessions  map[string]*entity.User
	loggedOut []string
}

func (f *fakeAuth) ResolveSession(_ context.Context, sessionID string) (*entity.User, error) {
	if u, ok := f.sessions[sessionID]; ok {
		return u, nil
	}
	return nil, service.ErrUnauthorized
}

func (f *fakeAuth) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	u, err := f.ResolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{UserID: u.UserID, Email: u.Email}, nil
}

func (f *fakeAuth) Logout(_ context.Context, sessionID string) error {
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

type fakeArticles struct {
	createErr error
	created   []dto.CreateArticleRequest
	bulkResp  *dto.BulkArticlesResponse
	upsertID  string
	listResp  []dto.ArticleWithTickersResponse
}

func (f *fakeArticles) CreateArticle(_ context.Context, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *req)
	return &dto.ArticleResponse{ArticleID: "id-1", URL: req.URL, Title: req.Title}, nil
}

func (f *fakeArticles) BulkCreate(context.Context, *dto.BulkArticlesRequest) (*dto.BulkArticlesResponse, error) {
	return f.bulkResp, nil
}

func (f *fakeArticles) UpsertTickerSentiment(_ context.Context, articleID string, req *dto.UpsertTickerSentimentRequest) (*dto.ArticleTickerResponse, error) {
	f.upsertID = articleID
	if articleID == "missing" {
		return nil, service.ErrArticleNotFound
	}
	return &dto.ArticleTickerResponse{ArticleID: articleID, Symbol: req.TickerSymbol, TickerSentimentScore: req.TickerSentimentScore.Value}, nil
}

func (f *fakeArticles) GetTickerSentiments(context.Context, string) ([]dto.ArticleTickerResponse, error) {
	return []dto.ArticleTickerResponse{}, nil
}

func (f *fakeArticles) ListArticles(context.Context) ([]dto.ArticleWithTickersResponse, error) {
	return f.listResp, nil
}

func (f *fakeArticles) ListArticlesByTicker(context.Context, string) ([]dto.ArticleWithTickersResponse, error) {
	return f.listResp, nil
}

func (f *fakeArticles) FindArticleID(url string) (*dto.ArticleIDResponse, error) {
	if url == "" {
		return nil, &service.ValidationError{Message: "missing or invalid url"}
	}
	return &dto.ArticleIDResponse{ArticleID: "hash:" + url}, nil
}

type fakeWatchlist struct {
	lastUserID   string
	addErr       error
	historyLimit int
}

func (f *fakeWatchlist) SetGlobalNotification(_ context.Context, userID string, _ *dto.SetNotificationsRequest) (*dto.SuccessResponse, error) {
	f.lastUserID = userID
	return &dto.SuccessResponse{Success: true}, nil
}

func (f *fakeWatchlist) AddToWatchlist(_ context.Context, userID string, req *dto.AddWatchlistRequest) (*dto.WatchlistEntryResponse, error) {
	f.lastUserID = userID
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &dto.WatchlistEntryResponse{UserID: userID, Symbol: req.Symbol, NotificationEnabled: true}, nil
}

func (f *fakeWatchlist) RemoveFromWatchlist(_ context.Context, userID, symbol string) (*dto.SuccessResponse, error) {
	f.lastUserID = userID
	if symbol == "NONE" {
		return nil, service.ErrWatchlistEntryNotFound
	}
	return &dto.SuccessResponse{Success: true}, nil
}

func (f *fakeWatchlist) SetTickerNotification(_ context.Context, userID, symbol string, req *dto.SetTickerNotificationRequest) (*dto.WatchlistEntryResponse, error) {
	f.lastUserID = userID
	return &dto.WatchlistEntryResponse{UserID: userID, Symbol: symbol, NotificationEnabled: *req.Enabled}, nil
}

func (f *fakeWatchlist) GetWatchlist(_ context.Context, userID string) ([]dto.WatchlistEntryResponse, error) {
	f.lastUserID = userID
	return []dto.WatchlistEntryResponse{{UserID: userID, Symbol: "AAPL"}}, nil
}

func (f *fakeWatchlist) GetNotificationHistory(_ context.Context, userID string, limit int) ([]dto.SyncLogResponse, error) {
	f.lastUserID = userID
	f.historyLimit = limit
	if limit < 0 {
		return nil, &service.ValidationError{Message: "limit must not be negative"}
	}
	return []dto.SyncLogResponse{{Trigger: "watchlist_add", Symbols: []string{"AAPL"}, Status: "failed", ErrorMessage: utils.ToPointer("throttled")}}, nil
}

type fakeTickers struct{}

func (fakeTickers) GetBySymbol(_ context.Context, symbol string) (*dto.TickerResponse, error) {
	if symbol != "AAPL" {
		return nil, service.ErrTickerNotFound
	}
	return &dto.TickerResponse{TickerID: 1, Symbol: "AAPL", Type: "stock"}, nil
}

func (fakeTickers) ListByType(context.Context, string) ([]dto.TickerResponse, error) {
	return []dto.TickerResponse{{TickerID: 1, Symbol: "AAPL", Type: "stock"}}, nil
}
