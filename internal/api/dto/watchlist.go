package dto

import "time"

// AddWatchlistRequest is the DTO for POST /users/watchlist.
type AddWatchlistRequest struct {
	Symbol              string  `json:"symbol" example:"AAPL"`
	Type                *string `json:"type,omitempty" enums:"stock,crypto"`
	NotificationEnabled *bool   `json:"notificationEnabled,omitempty"`
}

// SetTickerNotificationRequest is the DTO for PATCH /users/watchlist/{symbol}/notifications.
type SetTickerNotificationRequest struct {
	Enabled *bool   `json:"enabled"`
	Type    *string `json:"type,omitempty" enums:"stock,crypto"`
}

// SetNotificationsRequest is the DTO for PATCH /users/notifications.
type SetNotificationsRequest struct {
	Enabled *bool `json:"enabled"`
}

// WatchlistEntryResponse is a watchlist row with its ticker.
type WatchlistEntryResponse struct {
	UserID              string    `json:"userId"`
	TickerID            uint      `json:"tickerId"`
	Symbol              string    `json:"symbol"`
	Type                string    `json:"type"`
	NotificationEnabled bool      `json:"notificationEnabled"`
	CreatedAt           time.Time `json:"createdAt"`
}

// TickerResponse is a stored ticker.
type TickerResponse struct {
	TickerID  uint      `json:"tickerId"`
	Symbol    string    `json:"symbol"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionResponse is the user behind the current session.
type SessionResponse struct {
	UserID              string `json:"userId"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	NotificationEnabled bool   `json:"notificationEnabled"`
}

// SyncLogResponse is one filter policy push made for the session user.
type SyncLogResponse struct {
	Trigger      string    `json:"trigger" example:"watchlist_add"`
	Symbols      []string  `json:"symbols"`
	Status       string    `json:"status" enums:"succeeded,failed"`
	ErrorMessage *string   `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
}
