package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/metrics"
	"golang-stock-watchlist/pkg/sns"
	"golang-stock-watchlist/pkg/utils"
)

// SentimentAlert is one positive (article, ticker) sentiment to announce.
type SentimentAlert struct {
	ArticleID string
	Ticker    string
	Title     string
	URL       string
	Score     float64
}

// Subject is the email subject of the alert.
func (a SentimentAlert) Subject() string {
	return fmt.Sprintf("Sentiment alert: %s", a.Ticker)
}

// Message is the email body of the alert.
func (a SentimentAlert) Message() string {
	return fmt.Sprintf("The article titled %q has a positive sentiment score of %s for ticker %s. URL: %s",
		a.Title, strconv.FormatFloat(a.Score, 'f', -1, 64), a.Ticker, a.URL)
}

// AlertDispatcher publishes alerts without blocking the caller.
type AlertDispatcher interface {
	Dispatch(alert SentimentAlert)
	// Wait blocks until every dispatched alert has finished.
	Wait()
}

// NewAlertDispatcher creates a dispatcher publishing through publisher.
func NewAlertDispatcher(publisher sns.Publisher, recorder metrics.Recorder, log *logger.Logger, timeout time.Duration) AlertDispatcher {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &alertDispatcher{
		publisher: publisher,
		metrics:   recorder,
		logger:    log,
		timeout:   timeout,
	}
}

type alertDispatcher struct {
	publisher sns.Publisher
	metrics   metrics.Recorder
	logger    *logger.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// Dispatch publishes on its own goroutine detached from the request context.
// A failed publish is logged and counted, never returned.
func (d *alertDispatcher) Dispatch(alert SentimentAlert) {
	d.wg.Add(1)
	utils.GoSafe(d.logger, func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.publisher.Publish(ctx, alert.Ticker, alert.Subject(), alert.Message()); err != nil {
			d.metrics.RecordAlertPublish(metrics.ResultFailed)
			d.logger.Error("Failed to publish sentiment alert",
				logger.ErrorField(err),
				logger.StringField("ticker", alert.Ticker),
				logger.StringField("article_id", alert.ArticleID))
			return
		}
		d.metrics.RecordAlertPublish(metrics.ResultSucceeded)
		d.logger.Debug("Sentiment alert published",
			logger.StringField("ticker", alert.Ticker),
			logger.StringField("article_id", alert.ArticleID))
	})
}

func (d *alertDispatcher) Wait() {
	d.wg.Wait()
}
