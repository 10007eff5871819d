package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang-stock-watchlist/internal/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlite flavour of migrations/000001_init_schema.up.sql
var testSchema = []string{
	`CREATE TABLE users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		notification_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME
	)`,
	`CREATE TABLE tickers (
		ticker_id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE user_watchlist (
		user_id TEXT NOT NULL REFERENCES users(user_id),
		ticker_id INTEGER NOT NULL REFERENCES tickers(ticker_id),
		notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME,
		PRIMARY KEY (user_id, ticker_id)
	)`,
	`CREATE TABLE news_articles (
		article_id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		summary TEXT,
		published_at DATETIME NOT NULL,
		overall_sentiment_score REAL,
		overall_sentiment_label TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE news_article_tickers (
		article_id TEXT NOT NULL REFERENCES news_articles(article_id),
		ticker_id INTEGER NOT NULL REFERENCES tickers(ticker_id),
		ticker_sentiment_score REAL,
		ticker_sentiment_label TEXT,
		relevance_score REAL,
		updated_at DATETIME,
		PRIMARY KEY (article_id, ticker_id)
	)`,
	`CREATE TABLE notification_sync_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		email TEXT,
		"trigger" TEXT NOT NULL,
		symbols TEXT,
		filter_policy TEXT,
		status TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME
	)`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range testSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string, enabled bool) entity.User {
	t.Helper()
	u := entity.User{UserID: id, Email: id + "@example.com", Name: id, NotificationEnabled: enabled}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedTicker(t *testing.T, db *gorm.DB, symbol, tickerType string) entity.Ticker {
	t.Helper()
	tk, err := NewTickerRepository(db).FindOrCreate(context.Background(), symbol, tickerType)
	require.NoError(t, err)
	require.NotNil(t, tk)
	return *tk
}

func seedArticle(t *testing.T, db *gorm.DB, id, url string, publishedAt time.Time) entity.NewsArticle {
	t.Helper()
	a := entity.NewsArticle{ArticleID: id, URL: url, Title: "title " + id, Summary: "summary", PublishedAt: publishedAt}
	require.NoError(t, NewNewsArticleRepository(db).Create(context.Background(), &a))
	return a
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
