// Package report builds the safety score report shown on the dashboard:
// day, week and month scores, their deltas against the previous period, a
// 7-day history and a market benchmark.
package report

import "time"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Windows are the current periods and the periods they are compared with,
// all anchored at one instant.
type Windows struct {
	Today, Yesterday Window
	Week, LastWeek   Window
	Month, LastMonth Window
}

// ComputeWindows anchors the report periods at now in loc. Weeks start on
// Monday. Yesterday covers the same wall-clock span as today so far; the
// last week and last month are complete.
func ComputeWindows(now time.Time, loc *time.Location) Windows {
	now = now.In(loc)
	today := StartOfDay(now)
	week := StartOfWeek(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	return Windows{
		Today:     Window{today, now},
		Yesterday: Window{today.AddDate(0, 0, -1), now.AddDate(0, 0, -1)},
		Week:      Window{week, now},
		LastWeek:  Window{week.AddDate(0, 0, -7), week.Add(-time.Millisecond)},
		Month:     Window{month, now},
		LastMonth: Window{month.AddDate(0, -1, 0), month.Add(-time.Millisecond)},
	}
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns local midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	back := int(day.Weekday()) - 1
	if back < 0 {
		back = 6 // Sunday
	}
	return day.AddDate(0, 0, -back)
}

// HistoryDay is one day of the 7-day history.
type HistoryDay struct {
	Label string
	Window
}

// HistoryDays returns the last n local days, oldest first, ending with the
// day containing now. Each window runs from midnight to 1ms before the next
// midnight.
func HistoryDays(now time.Time, loc *time.Location, n int) []HistoryDay {
	now = now.In(loc)
	days := make([]HistoryDay, n)
	for i := range days {
		start := StartOfDay(now).AddDate(0, 0, i-(n-1))
		days[i] = HistoryDay{
			Label:  start.Weekday().String()[:3],
			Window: Window{start, start.AddDate(0, 0, 1).Add(-time.Millisecond)},
		}
	}
	return days
}
