package tool

import (
	"testing"
	"time"
)

func TestResolveDate(t *testing.T) {
	t.Parallel()

	riyadh := time.FixedZone("AST", 3*60*60)
	// Tuesday
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, riyadh)

	cases := []struct {
		expr string
		want string
	}{
		{"today", "2025-06-10"},
		{"  TODAY ", "2025-06-10"},
		{"tomorrow", "2025-06-11"},
		{"Day  after   Tomorrow", "2025-06-12"},
		{"the day after tomorrow", "2025-06-12"},
		{"2025-07-04", "2025-07-04"},
		{"2024-02-29", "2024-02-29"},
		{"friday", "2025-06-13"},
		{"this Friday", "2025-06-13"},
		{"next friday", "2025-06-20"},
		{"tuesday", "2025-06-17"},
		{"next tuesday", "2025-06-24"},
		{"wednesday", "2025-06-11"},
		{"2025-13-40", "2025-06-11"},
		{"someday", "2025-06-11"},
		{"", "2025-06-11"},
	}
	for _, tc := range cases {
		got := ResolveDate(tc.expr, now)
		if formatDate(got) != tc.want {
			t.Fatalf("ResolveDate(%q) = %s, want %s", tc.expr, formatDate(got), tc.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 || got.Location() != riyadh {
			t.Fatalf("ResolveDate(%q) = %v, want midnight in %v", tc.expr, got, riyadh)
		}
	}
}

func TestResolveDateAlwaysStrictlyAfterForWeekdays(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		now := start.AddDate(0, 0, i)
		for _, wd := range weekdayNames {
			got := ResolveDate(wd.name, now)
			if got.Weekday() != wd.day {
				t.Fatalf("%s from %s resolved to %s", wd.name, formatDate(now), got.Weekday())
			}
			days := int(got.Sub(startOfDay(now)).Hours() / 24)
			if days < 1 || days > 7 {
				t.Fatalf("%s from %s is %d days away", wd.name, formatDate(now), days)
			}
		}
	}
}
