package entity

import "time"

// User is created by the identity provider callback; only the notification flag is mutated here.
type User struct {
	UserID              string    `gorm:"column:user_id;primaryKey" json:"userId"`
	Email               string    `gorm:"uniqueIndex;not null" json:"email"`
	Name                string    `json:"name"`
	NotificationEnabled bool      `gorm:"not null" json:"notificationEnabled"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string {
	return "users"
}
