package telegram

import (
	"fmt"
	"strings"
	"time"
)

const maxMessageLen = 4090

// SyncFailure describes a filter policy push that did not reach the notification service.
type SyncFailure struct {
	UserID  string
	Email   string
	Trigger string
	Step    string
	Symbols []string
	Err     string
	At      time.Time
	Queued  bool
}

// ReconcileSummary describes one sweep run of the sync service.
type ReconcileSummary struct {
	Total       int
	Succeeded   int
	Failed      int
	Subscribed  int
	FailedUsers []string
	Duration    time.Duration
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes the characters legacy Markdown treats as entities.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatSyncFailure formats a failed push for the operator chat.
func FormatSyncFailure(f SyncFailure) string {
	var sb strings.Builder
	sb.WriteString("⚠️ *Watchlist filter sync failed*\n\n")
	sb.WriteString(fmt.Sprintf("👤 *User:* %s (%s)\n", EscapeMarkdown(f.UserID), EscapeMarkdown(f.Email)))
	sb.WriteString(fmt.Sprintf("🔁 *Trigger:* %s\n", EscapeMarkdown(f.Trigger)))
	if f.Step != "" {
		sb.WriteString(fmt.Sprintf("🧩 *Step:* %s\n", EscapeMarkdown(f.Step)))
	}
	if len(f.Symbols) > 0 {
		sb.WriteString(fmt.Sprintf("📈 *Symbols:* %s\n", EscapeMarkdown(strings.Join(f.Symbols, ", "))))
	}
	sb.WriteString(fmt.Sprintf("❌ *Error:* %s\n", EscapeMarkdown(f.Err)))
	if f.Queued {
		sb.WriteString("📥 Reconcile task queued\n")
	}
	at := f.At
	if at.IsZero() {
		at = time.Now()
	}
	sb.WriteString(fmt.Sprintf("🕒 %s", at.UTC().Format(time.RFC3339)))
	return sb.String()
}

// FormatReconcileSummary formats a sweep result, splitting long failed user lists across messages.
func FormatReconcileSummary(s ReconcileSummary) []string {
	var header strings.Builder
	icon := "✅"
	if s.Failed > 0 {
		icon = "⚠️"
	}
	header.WriteString(fmt.Sprintf("%s *Watchlist reconcile finished*\n\n", icon))
	header.WriteString(fmt.Sprintf("👥 *Users:* %d\n", s.Total))
	header.WriteString(fmt.Sprintf("🟢 *Succeeded:* %d\n", s.Succeeded))
	header.WriteString(fmt.Sprintf("🔴 *Failed:* %d\n", s.Failed))
	if s.Subscribed > 0 {
		header.WriteString(fmt.Sprintf("✉️ *Subscribed:* %d\n", s.Subscribed))
	}
	header.WriteString(fmt.Sprintf("⏱ *Duration:* %s\n", s.Duration.Round(time.Millisecond)))

	if len(s.FailedUsers) == 0 {
		return []string{header.String()}
	}

	var messages []string
	var current strings.Builder
	current.WriteString(header.String())
	current.WriteString("\n*Failed users:*\n")
	part := 1

	for _, u := range s.FailedUsers {
		line := fmt.Sprintf("• %s\n", EscapeMarkdown(u))
		if current.Len()+len(line) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			current.Reset()
			current.WriteString(fmt.Sprintf("---*Failed users part %d*---\n", part))
		}
		current.WriteString(line)
	}
	messages = append(messages, current.String())
	return messages
}
