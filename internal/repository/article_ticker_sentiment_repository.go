package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleTickerSentimentRepository defines the interface for per-ticker article sentiments.
type ArticleTickerSentimentRepository interface {
	Upsert(ctx context.Context, sentiment *entity.ArticleTickerSentiment) error
	BulkUpsert(ctx context.Context, sentiments []entity.ArticleTickerSentiment) error
	ListByArticle(ctx context.Context, articleID string) ([]entity.ArticleTickerSentiment, error)
}

// NewArticleTickerSentimentRepository creates a new GORM-based sentiment repository.
func NewArticleTickerSentimentRepository(db *gorm.DB) ArticleTickerSentimentRepository {
	return &articleTickerSentimentRepository{db: db}
}

type articleTickerSentimentRepository struct {
	db *gorm.DB
}

var sentimentUpsert = clause.OnConflict{
	Columns: []clause.Column{{Name: "article_id"}, {Name: "ticker_id"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"ticker_sentiment_score",
		"ticker_sentiment_label",
		"relevance_score",
		"updated_at",
	}),
}

// Upsert writes the sentiment; the latest write wins per (article, ticker).
func (r *articleTickerSentimentRepository) Upsert(ctx context.Context, sentiment *entity.ArticleTickerSentiment) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(sentimentUpsert).
		Create(sentiment).Error
}

// BulkUpsert writes all sentiments in one transaction. Pairs must be unique within the batch.
func (r *articleTickerSentimentRepository) BulkUpsert(ctx context.Context, sentiments []entity.ArticleTickerSentiment) error {
	if len(sentiments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).
			Clauses(sentimentUpsert).
			CreateInBatches(&sentiments, 500).Error
	})
}

// ListByArticle returns the article's sentiments with their tickers, ordered by symbol.
func (r *articleTickerSentimentRepository) ListByArticle(ctx context.Context, articleID string) ([]entity.ArticleTickerSentiment, error) {
	var rows []entity.ArticleTickerSentiment
	err := r.db.WithContext(ctx).
		Joins("Ticker").
		Where("news_article_tickers.article_id = ?", articleID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Ticker", Name: "symbol"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
