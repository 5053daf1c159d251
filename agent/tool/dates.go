package tool

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

var weekdayNames = [...]struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// ResolveDate maps a free-form date expression to a calendar date relative to
// now. The result is midnight in now's location. It never fails: anything it
// cannot interpret resolves to tomorrow.
//
// Precedence: today/tomorrow/day after tomorrow, then strict YYYY-MM-DD, then
// the first weekday name found ("next" pushes it one more week), then tomorrow.
func ResolveDate(expr string, now time.Time) time.Time {
	today := startOfDay(now)
	phrase := strings.Join(strings.Fields(strings.ToLower(expr)), " ")

	switch phrase {
	case "today":
		return today
	case "tomorrow":
		return today.AddDate(0, 0, 1)
	case "day after tomorrow", "the day after tomorrow":
		return today.AddDate(0, 0, 2)
	}

	if d, err := time.ParseInLocation(contractx.DateLayout, strings.TrimSpace(expr), now.Location()); err == nil {
		return d
	}

	for _, wd := range weekdayNames {
		if !strings.Contains(phrase, wd.name) {
			continue
		}
		start := today
		if hasWord(phrase, "next") {
			start = start.AddDate(0, 0, 7)
		}
		for i := 1; i <= 7; i++ {
			candidate := start.AddDate(0, 0, i)
			if candidate.Weekday() == wd.day {
				return candidate
			}
		}
	}

	return today.AddDate(0, 0, 1)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func hasWord(phrase, word string) bool {
	for _, w := range strings.Fields(phrase) {
		if w == word {
			return true
		}
	}
	return false
}

func formatDate(t time.Time) string {
	return t.Format(contractx.DateLayout)
}
