package incident

import (
	"fmt"
	"time"
)

// FileCalendar is the time base of incident files: one CSV per UTC calendar
// date. Shift classification uses the same base; report windows use the
// report location.
var FileCalendar = time.UTC

// DateLayout is the layout of file dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// FileDate returns the file date containing t.
func FileDate(t time.Time) string {
	return t.In(FileCalendar).Format(DateLayout)
}

// ParseFileDate parses a YYYY-MM-DD file date to its midnight in FileCalendar.
func ParseFileDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, FileCalendar)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DayBounds returns the first and last millisecond of a file date.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.In(FileCalendar).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, FileCalendar)
	return start, start.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DatesBetween lists every file date whose day intersects [start, end],
// both boundary dates included. It returns nil when end is before start.
func DatesBetween(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	cur, _ := DayBounds(start)
	last, _ := DayBounds(end)

	var dates []string
	for !cur.After(last) {
		dates = append(dates, cur.Format(DateLayout))
		cur = cur.AddDate(0, 0, 1)
	}
	return dates
}
