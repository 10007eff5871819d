package synchronizer

import (
	"sort"
	"strings"

	"golang-stock-watchlist/internal/entity"
	"golang-stock-watchlist/pkg/common"
)

// DesiredFilter derives the filter policy ticker list from the stored watchlist.
// A disabled user or an empty result yields the no-match sentinel, never an empty list.
func DesiredFilter(userEnabled bool, entries []entity.WatchlistTicker) []string {
	if !userEnabled {
		return []string{common.FilterPolicyNoMatch}
	}

	seen := make(map[string]struct{}, len(entries))
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.NotificationEnabled {
			continue
		}
		symbol := strings.TrimSpace(e.Symbol)
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}

	if len(symbols) == 0 {
		return []string{common.FilterPolicyNoMatch}
	}
	sort.Strings(symbols)
	return symbols
}
