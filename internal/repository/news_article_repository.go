package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsArticleRepository defines the interface for interacting with news articles.
type NewsArticleRepository interface {
	Create(ctx context.Context, article *entity.NewsArticle) error
	CreateIgnoreConflict(ctx context.Context, articles []entity.NewsArticle) (int64, error)
	FindByID(ctx context.Context, articleID string) (*entity.NewsArticle, error)
	FindByIDs(ctx context.Context, articleIDs []string) ([]entity.NewsArticle, error)
	ListWithSentiments(ctx context.Context) ([]entity.NewsArticle, error)
	ListByTicker(ctx context.Context, tickerID uint) ([]entity.NewsArticle, error)
}

// NewNewsArticleRepository creates a new instance of NewsArticleRepository.
func NewNewsArticleRepository(db *gorm.DB) NewsArticleRepository {
	return &newsArticleRepository{db: db}
}

type newsArticleRepository struct {
	db *gorm.DB
}

// Create inserts a single article and returns ErrDuplicate when its URL is already stored.
func (r *newsArticleRepository) Create(ctx context.Context, article *entity.NewsArticle) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error)
}

// CreateIgnoreConflict inserts articles, skipping the ones already stored, and returns how many were new.
func (r *newsArticleRepository) CreateIgnoreConflict(ctx context.Context, articles []entity.NewsArticle) (int64, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&articles)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// FindByID returns nil when the article does not exist.
func (r *newsArticleRepository) FindByID(ctx context.Context, articleID string) (*entity.NewsArticle, error) {
	var article entity.NewsArticle
	if err := r.db.WithContext(ctx).Where("article_id = ?", articleID).First(&article).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

func (r *newsArticleRepository) FindByIDs(ctx context.Context, articleIDs []string) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	if len(articleIDs) == 0 {
		return articles, nil
	}
	if err := r.db.WithContext(ctx).Where("article_id IN ?", articleIDs).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListWithSentiments returns every article, newest first, with its ticker sentiments.
func (r *newsArticleRepository) ListWithSentiments(ctx context.Context) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Preload("Tickers.Ticker").
		Order("published_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// ListByTicker returns the articles carrying a sentiment for the ticker, with only that sentiment attached.
func (r *newsArticleRepository) ListByTicker(ctx context.Context, tickerID uint) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	sub := r.db.Model(&entity.ArticleTickerSentiment{}).Select("article_id").Where("ticker_id = ?", tickerID)
	err := r.db.WithContext(ctx).
		Preload("Tickers", "ticker_id = ?", tickerID).
		Preload("Tickers.Ticker").
		Where("article_id IN (?)", sub).
		Order("published_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}
