package utils

import (
	"context"
	"runtime/debug"

	"golang-stock-watchlist/pkg/logger"
)

func ToPointer[T any](v T) *T {
	return &v
}

// GoSafe runs fn on a new goroutine, logging and swallowing any panic.
func GoSafe(log *logger.Logger, fn func()) {
	if log == nil {
		log = logger.NewNop()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Recovered from panic",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still alive.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stopping", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
