package dateinput

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	// a Monday
	now, _ := time.Parse("2/1/2006", "2/2/2026")
	today := now.Truncate(24 * time.Hour)

	tests := []struct {
		input string
		want  *time.Time
	}{
		{"", nil},
		{"nonsense", nil},
		{"today", &today},
		{"tomorrow", ptr(today.AddDate(0, 0, 1))},
		{"fri", ptr(today.AddDate(0, 0, 4))},
		{"friday", ptr(today.AddDate(0, 0, 4))},
		// "next monday" when today is monday means a week out
		{"monday", ptr(today.AddDate(0, 0, 7))},
		{"3", ptr(today.AddDate(0, 0, 3))},
		{"3d", ptr(today.AddDate(0, 0, 3))},
		{"in 3 days", ptr(today.AddDate(0, 0, 3))},
		{"2 weeks", ptr(today.AddDate(0, 0, 14))},
		{"in 1wek", nil},
		{"21/4", ptr(date(2026, 4, 21))},
		{"21/4/2027", ptr(date(2027, 4, 21))},
		{"apr 21", ptr(date(2026, 4, 21))},
		{"21 april", ptr(date(2026, 4, 21))},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input, now)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
