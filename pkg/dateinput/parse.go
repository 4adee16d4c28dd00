package dateinput

import (
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Parse resolves a casual date phrase against a reference time.
// Returns nil when the phrase doesn't resolve to a day.
func Parse(s string, now time.Time) *time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	today := now.Truncate(day)

	switch s {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.Add(day)
		return &t
	}

	if t, ok := parseWeekday(s, today); ok {
		return &t
	}
	if t, ok := parseRelative(s, today); ok {
		return &t
	}
	if t, ok := parseAbsolute(s, today); ok {
		return &t
	}
	return nil
}

// parseWeekday matches unambiguous prefixes of weekday names, e.g.
// "fri" or "friday", resolving to the next such day.
func parseWeekday(s string, today time.Time) (time.Time, bool) {
	if len(s) < 3 {
		return time.Time{}, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if strings.HasPrefix(name, s) {
			ahead := (int(d) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.Add(time.Duration(ahead) * day), true
		}
	}
	return time.Time{}, false
}

var units = map[string]int{
	"d": 1, "day": 1, "days": 1,
	"w": 7, "week": 7, "weeks": 7,
	"m": 30, "month": 30, "months": 30,
}

// parseRelative matches "in 3 days", "3d", "2 weeks" and the like.
func parseRelative(s string, today time.Time) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "in "))

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return time.Time{}, false
	}

	unit := strings.TrimSpace(s[i:])
	mult := 1
	if unit != "" {
		var ok bool
		mult, ok = units[unit]
		if !ok {
			return time.Time{}, false
		}
	}
	return today.Add(time.Duration(n*mult) * day), true
}

var formats = []string{
	"2/1",
	"2/1/2006",
	"2-1",
	"2-1-2006",
	"Jan 2",
	"2 Jan",
	"January 2",
	"2 January",
}

// parseAbsolute matches explicit dates; a missing year means the
// current one.
func parseAbsolute(s string, today time.Time) (time.Time, bool) {
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = t.AddDate(today.Year(), 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}
