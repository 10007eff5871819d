package entity

import "time"

// WatchlistEntry is a (user, ticker) pair with its own alert flag.
type WatchlistEntry struct {
	UserID              string    `gorm:"column:user_id;primaryKey" json:"userId"`
	TickerID            uint      `gorm:"column:ticker_id;primaryKey;autoIncrement:false" json:"tickerId"`
	NotificationEnabled bool      `gorm:"not null" json:"notificationEnabled"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (WatchlistEntry) TableName() string {
	return "user_watchlist"
}

// WatchlistTicker is a watchlist entry joined with its ticker.
type WatchlistTicker struct {
	UserID              string    `json:"userId"`
	TickerID            uint      `json:"tickerId"`
	Symbol              string    `json:"symbol"`
	Type                string    `json:"type"`
	NotificationEnabled bool      `json:"notificationEnabled"`
	CreatedAt           time.Time `json:"createdAt"`
}
