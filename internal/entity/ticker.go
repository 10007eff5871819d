package entity

import (
	"strings"
	"time"
)

const (
	TickerTypeStock  = "stock"
	TickerTypeCrypto = "crypto"
)

// Ticker is a tradable symbol, created lazily on first watchlist reference.
type Ticker struct {
	TickerID  uint      `gorm:"column:ticker_id;primaryKey" json:"tickerId"`
	Symbol    string    `gorm:"uniqueIndex;not null" json:"symbol"`
	Type      string    `gorm:"not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Ticker) TableName() string {
	return "tickers"
}

// IsValidTickerType reports whether t is stock or crypto.
func IsValidTickerType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case TickerTypeStock, TickerTypeCrypto:
		return true
	}
	return false
}
