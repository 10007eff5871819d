package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrTickerNotFound          = errors.New("ticker not found")
	ErrArticleNotFound         = errors.New("article not found")
	ErrWatchlistEntryNotFound  = errors.New("watchlist entry not found")
	ErrDuplicateArticle        = errors.New("article with the same URL already exists")
	ErrDuplicateWatchlistEntry = errors.New("ticker already in watchlist")
	ErrUnauthorized            = errors.New("unauthorized")
)

// ValidationError is returned for missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
