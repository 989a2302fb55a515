package strutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/slice"
)

var durationRe = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]+)$`)

var durationUnits = map[string]time.Duration{
	"s":       time.Second,
	"sec":     time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"m":       time.Minute,
	"min":     time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"d":       24 * time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"w":       7 * 24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
	"month":   30 * 24 * time.Hour,
	"months":  30 * 24 * time.Hour,
	"year":    365 * 24 * time.Hour,
	"years":   365 * 24 * time.Hour,
}

// ParseDuration parses human durations such as "30min", "2hour", "3 days"
// or "1month". A month is 30 days and a year 365 days.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration value: %q", m[1])
	}
	unit, ok := durationUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit: %q", m[2])
	}
	return time.Duration(n) * unit, nil
}

// SplitWords splits on whitespace and drops duplicates, keeping first
// occurrence order.
func SplitWords(s string) []string {
	return slice.Unique(strings.Fields(s))
}
