package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// SyncTrigger names the mutation that caused a filter policy push.
type SyncTrigger string

const (
	SyncTriggerGlobalToggle    SyncTrigger = "global_toggle"
	SyncTriggerWatchlistAdd    SyncTrigger = "watchlist_add"
	SyncTriggerWatchlistRemove SyncTrigger = "watchlist_remove"
	SyncTriggerTickerToggle    SyncTrigger = "ticker_toggle"
	SyncTriggerReconcile       SyncTrigger = "reconcile"
	SyncTriggerSweep           SyncTrigger = "sweep"
)

func (t SyncTrigger) String() string {
	return string(t)
}

const (
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
)

// NotificationSyncLog records every filter policy push so failed ones can be reconciled.
type NotificationSyncLog struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"index;not null" json:"userId"`
	Email        string         `json:"email"`
	Trigger      SyncTrigger    `gorm:"not null" json:"trigger"`
	Symbols      pq.StringArray `gorm:"type:text[]" json:"symbols"`
	FilterPolicy datatypes.JSON `gorm:"type:jsonb" json:"filterPolicy"`
	Status       string         `gorm:"not null" json:"status"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (NotificationSyncLog) TableName() string {
	return "notification_sync_logs"
}
