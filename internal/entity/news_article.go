package entity

import "time"

// NewsArticle is keyed by the sha256 of its trimmed URL.
type NewsArticle struct {
	ArticleID             string                   `gorm:"column:article_id;primaryKey" json:"articleId"`
	URL                   string                   `gorm:"column:url;uniqueIndex;not null" json:"url"`
	Title                 string                   `gorm:"not null" json:"title"`
	Summary               string                   `json:"summary"`
	PublishedAt           time.Time                `gorm:"not null" json:"publishedAt"`
	OverallSentimentScore *float64                 `json:"overallSentimentScore"`
	OverallSentimentLabel *string                  `json:"overallSentimentLabel"`
	CreatedAt             time.Time                `gorm:"autoCreateTime" json:"createdAt"`
	Tickers               []ArticleTickerSentiment `gorm:"foreignKey:ArticleID;references:ArticleID" json:"tickers,omitempty"`
}

func (NewsArticle) TableName() string {
	return "news_articles"
}

// ArticleTickerSentiment is the latest sentiment written for an (article, ticker) pair.
type ArticleTickerSentiment struct {
	ArticleID            string    `gorm:"column:article_id;primaryKey" json:"articleId"`
	TickerID             uint      `gorm:"column:ticker_id;primaryKey;autoIncrement:false" json:"tickerId"`
	TickerSentimentScore *float64  `json:"tickerSentimentScore"`
	TickerSentimentLabel *string   `json:"tickerSentimentLabel"`
	RelevanceScore       *float64  `json:"relevanceScore"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Ticker               *Ticker   `gorm:"foreignKey:TickerID;references:TickerID" json:"-"`
}

func (ArticleTickerSentiment) TableName() string {
	return "news_article_tickers"
}
