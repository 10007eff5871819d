package repository

import (
	"context"

	"golang-stock-watchlist/internal/entity"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*entity.User, error)
	FindAllNotificationEnabled(ctx context.Context) ([]entity.User, error)
	SetNotificationEnabled(ctx context.Context, userID string, enabled bool) error
}

// NewUserRepository creates a new GORM-based user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

// FindByID returns nil when the user does not exist.
func (r *userRepository) FindByID(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAllNotificationEnabled(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("notification_enabled = ?", true).Order("user_id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) SetNotificationEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("user_id = ?", userID).
		Update("notification_enabled", enabled).Error
}
