package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang-stock-watchlist/pkg/common"

	"github.com/redis/go-redis/v9"
)

// SessionRepository resolves sessions issued by the identity provider.
type SessionRepository interface {
	FindUserID(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// NewSessionRepository creates a Redis-backed session repository.
func NewSessionRepository(rdb redis.Cmdable) SessionRepository {
	return &sessionRepository{rdb: rdb}
}

type sessionRepository struct {
	rdb redis.Cmdable
}

type sessionPayload struct {
	UserID string `json:"userId"`
}

// FindUserID returns "" when the session is unknown or expired.
// The stored value is either the bare user id or a JSON object carrying userId.
func (r *sessionRepository) FindUserID(ctx context.Context, sessionID string) (string, error) {
	val, err := r.rdb.Get(ctx, fmt.Sprintf(common.RedisKeySession, sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "{") {
		var payload sessionPayload
		if err := json.Unmarshal([]byte(val), &payload); err != nil {
			return "", fmt.Errorf("malformed session payload: %w", err)
		}
		return payload.UserID, nil
	}
	return val, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(common.RedisKeySession, sessionID)).Err()
}
