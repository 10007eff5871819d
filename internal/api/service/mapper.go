package service

import (
	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/utils"
)

func toArticleResponse(a *entity.NewsArticle) dto.ArticleResponse {
	return dto.ArticleResponse{
		ArticleID:             a.ArticleID,
		URL:                   a.URL,
		Title:                 a.Title,
		Summary:               a.Summary,
		PublishedAt:           a.PublishedAt,
		OverallSentimentScore: a.OverallSentimentScore,
		OverallSentimentLabel: a.OverallSentimentLabel,
		CreatedAt:             a.CreatedAt,
	}
}

func toArticleTickerResponse(s *entity.ArticleTickerSentiment) dto.ArticleTickerResponse {
	resp := dto.ArticleTickerResponse{
		ArticleID:            s.ArticleID,
		TickerID:             s.TickerID,
		TickerSentimentScore: s.TickerSentimentScore,
		TickerSentimentLabel: s.TickerSentimentLabel,
		RelevanceScore:       s.RelevanceScore,
		UpdatedAt:            s.UpdatedAt,
	}
	if s.Ticker != nil {
		resp.Symbol = s.Ticker.Symbol
	}
	return resp
}

func toArticleWithTickersResponse(a *entity.NewsArticle) dto.ArticleWithTickersResponse {
	resp := dto.ArticleWithTickersResponse{
		ArticleResponse: toArticleResponse(a),
		Tickers:         make([]dto.ArticleTickerResponse, 0, len(a.Tickers)),
	}
	for i := range a.Tickers {
		resp.Tickers = append(resp.Tickers, toArticleTickerResponse(&a.Tickers[i]))
	}
	return resp
}

func toWatchlistEntryResponse(w entity.WatchlistTicker) dto.WatchlistEntryResponse {
	return dto.WatchlistEntryResponse{
		UserID:              w.UserID,
		TickerID:            w.TickerID,
		Symbol:              w.Symbol,
		Type:                w.Type,
		NotificationEnabled: w.NotificationEnabled,
		CreatedAt:           w.CreatedAt,
	}
}

func toTickerResponse(t *entity.Ticker) dto.TickerResponse {
	return dto.TickerResponse{
		TickerID:  t.TickerID,
		Symbol:    t.Symbol,
		Type:      t.Type,
		CreatedAt: t.CreatedAt,
	}
}

func toSyncLogResponse(l entity.NotificationSyncLog) dto.SyncLogResponse {
	resp := dto.SyncLogResponse{
		Trigger:   l.Trigger.String(),
		Symbols:   []string(l.Symbols),
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
	if l.ErrorMessage != "" {
		resp.ErrorMessage = utils.ToPointer(l.ErrorMessage)
	}
	return resp
}
