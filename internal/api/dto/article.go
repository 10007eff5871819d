package dto

import "time"

// CreateArticleRequest is the DTO for creating a single news article.
type CreateArticleRequest struct {
	ArticleID             string        `json:"articleId,omitempty"`
	Title                 string        `json:"title"`
	URL                   string        `json:"url"`
	Summary               *string       `json:"summary"`
	PublishedAt           *string       `json:"publishedAt" example:"20240101T093000"`
	OverallSentimentScore FlexibleFloat `json:"overallSentimentScore" swaggertype:"number"`
	OverallSentimentLabel *string       `json:"overallSentimentLabel"`
}

// SentimentInput is one per-ticker sentiment of a bulk request.
type SentimentInput struct {
	ArticleID            string        `json:"articleId"`
	TickerSymbol         string        `json:"tickerSymbol"`
	TickerSentimentScore FlexibleFloat `json:"tickerSentimentScore" swaggertype:"number"`
	TickerSentimentLabel *string       `json:"tickerSentimentLabel"`
	RelevanceScore       FlexibleFloat `json:"relevanceScore" swaggertype:"number"`
}

// BulkArticlesRequest creates articles and upserts sentiments in one call.
type BulkArticlesRequest struct {
	Articles   []CreateArticleRequest `json:"articles"`
	Sentiments []SentimentInput       `json:"sentiments"`
}

// UpsertTickerSentimentRequest is the DTO for POST /articles/{articleId}/tickers.
type UpsertTickerSentimentRequest struct {
	TickerSymbol         string        `json:"tickerSymbol"`
	TickerSentimentScore FlexibleFloat `json:"tickerSentimentScore" swaggertype:"number"`
	TickerSentimentLabel *string       `json:"tickerSentimentLabel"`
	RelevanceScore       FlexibleFloat `json:"relevanceScore" swaggertype:"number"`
}

// ArticleResponse is a stored news article.
type ArticleResponse struct {
	ArticleID             string    `json:"articleId"`
	URL                   string    `json:"url"`
	Title                 string    `json:"title"`
	Summary               string    `json:"summary"`
	PublishedAt           time.Time `json:"publishedAt"`
	OverallSentimentScore *float64  `json:"overallSentimentScore"`
	OverallSentimentLabel *string   `json:"overallSentimentLabel"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ArticleTickerResponse is a per-ticker sentiment row.
type ArticleTickerResponse struct {
	ArticleID            string    `json:"articleId"`
	TickerID             uint      `json:"tickerId"`
	Symbol               string    `json:"symbol"`
	TickerSentimentScore *float64  `json:"tickerSentimentScore"`
	TickerSentimentLabel *string   `json:"tickerSentimentLabel"`
	RelevanceScore       *float64  `json:"relevanceScore"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ArticleWithTickersResponse is an article with its ticker sentiments.
type ArticleWithTickersResponse struct {
	ArticleResponse
	Tickers []ArticleTickerResponse `json:"tickers"`
}

// BulkArticlesResponse summarises a bulk call.
type BulkArticlesResponse struct {
	Message            string `json:"message"`
	ArticlesInserted   int64  `json:"articlesInserted"`
	SentimentsUpserted int    `json:"sentimentsUpserted"`
	AlertsQueued       int    `json:"alertsQueued"`
}

// ArticleIDResponse carries the id derived from a URL.
type ArticleIDResponse struct {
	ArticleID string `json:"articleId"`
}
