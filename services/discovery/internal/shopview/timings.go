package shopview

import (
	"strings"

	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

// Weekdays in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayHours is the opening window of one weekday, for example
// "09:00 - 21:00" or "Closed".
type DayHours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// FormatTimings returns the opening hours for every weekday, Monday first.
// Days without both an opening and a closing time are closed. Day names are
// matched case-insensitively; unknown names are ignored.
func FormatTimings(timings []domain.Timing) []DayHours {
	byDay := make(map[string]string, len(timings))
	for _, t := range timings {
		day := capitalize(t.Day)
		if t.OpenTime != "" && t.CloseTime != "" {
			byDay[day] = t.OpenTime + " - " + t.CloseTime
		} else {
			byDay[day] = "Closed"
		}
	}

	out := make([]DayHours, 0, len(Weekdays))
	for _, day := range Weekdays {
		hours, ok := byDay[day]
		if !ok {
			hours = "Closed"
		}
		out = append(out, DayHours{Day: day, Hours: hours})
	}
	return out
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
