package service

import (
	"context"
	"strings"

	"golang-stock-watchlist/internal/api/dto"
	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/internal/repository"
	"golang-stock-watchlist/pkg/logger"
)

// AuthService resolves sessions issued by the identity provider. It never issues them.
type AuthService interface {
	ResolveSession(ctx context.Context, sessionID string) (*entity.User, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

// NewAuthService creates a new auth service.
func NewAuthService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, log *logger.Logger) AuthService {
	return &authService{sessionRepo: sessionRepo, userRepo: userRepo, logger: log}
}

type authService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	logger      *logger.Logger
}

// ResolveSession returns ErrUnauthorized for a missing, unknown or orphaned session.
func (s *authService) ResolveSession(ctx context.Context, sessionID string) (*entity.User, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrUnauthorized
	}
	userID, err := s.sessionRepo.FindUserID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.DebugContext(ctx, "Session points to unknown user", logger.StringField("user_id", userID))
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *authService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	user, err := s.ResolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		UserID:              user.UserID,
		Email:               user.Email,
		Name:                user.Name,
		NotificationEnabled: user.NotificationEnabled,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}
