package statement

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order. ISO forms come first, then day-first
// forms, which is what the supported banks export.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate converts a raw statement date into a UTC calendar date.
func ParseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(normalizeDigits(raw))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
