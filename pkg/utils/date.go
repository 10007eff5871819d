package utils

import (
	"fmt"
	"strings"
	"time"
)

// publishedAtLayouts lists the accepted publishedAt formats, compact feed timestamps first.
var publishedAtLayouts = []string{
	"20060102T150405",
	"20060102T1504",
	"20060102",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishedAt parses a publication timestamp. Values without a zone are read as UTC.
func ParsePublishedAt(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
