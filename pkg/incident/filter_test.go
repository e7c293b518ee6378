package incident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodesafety/safetyscore/pkg/scoring"
)

func sampleRecords(t *testing.T) []Record {
	t.Helper()
	got := Parse(csvText(
		"2026-02-27T07:59:59.999Z,no-high-vis,cam-01,Clark Building,1,Main Entrance,,",
		"2026-02-27T08:00:00.000Z,walkway-exit,cam-02,Clark Building,1,Aisle 2,,",
		"2026-02-27T08:00:00.001Z,dock-door-open,cam-03,Clark Building,1,Dock 1,,",
		"2026-02-27T15:00:00.000Z,mhe-close-1m,cam-04,Clark Building,1,Bay 4,,",
	), scoring.DefaultRules())
	require.Len(t, got, 4)
	return got
}

func TestInRangeSingleInstant(t *testing.T) {
	recs := sampleRecords(t)
	at := time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC)

	got := InRange(recs, at, at)
	require.Len(t, got, 1)
	assert.Equal(t, "walkway-exit", got[0].IncidentType)
}

func TestInRangeInclusiveBounds(t *testing.T) {
	recs := sampleRecords(t)
	start := time.Date(2026, 2, 27, 7, 59, 59, 999_000_000, time.UTC)
	end := time.Date(2026, 2, 27, 8, 0, 0, 1_000_000, time.UTC)

	got := InRange(recs, start, end)
	assert.Len(t, got, 3)
}

func TestFilterApply(t *testing.T) {
	recs := sampleRecords(t)

	assert.Len(t, Filter{}.Apply(recs), 4)
	assert.Len(t, Filter{Shift: ShiftMorning}.Apply(recs), 3)
	assert.Len(t, Filter{Shift: ShiftAfternoon}.Apply(recs), 1)
	assert.Empty(t, Filter{Shift: ShiftNight}.Apply(recs))
	assert.Len(t, Filter{Group: scoring.GroupMHE}.Apply(recs), 1)
	assert.Len(t, Filter{Type: "dock-door-open", Shift: ShiftMorning}.Apply(recs), 1)
	assert.Empty(t, Filter{Type: "dock-door-open", Shift: ShiftAfternoon}.Apply(recs))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords(t))

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByType["no-high-vis"])
	assert.Equal(t, 1, s.ByGroup[scoring.GroupWalkway])
	assert.Equal(t, 3, s.ByShift[ShiftMorning])
	assert.Equal(t, 1, s.ByShift[ShiftAfternoon])
	assert.Equal(t, 2, s.BySeverity[scoring.SeverityHigh])
	assert.Equal(t, 1, s.BySeverity[scoring.SeverityMedium])
}

func TestSortByTime(t *testing.T) {
	recs := sampleRecords(t)
	recs[0], recs[3] = recs[3], recs[0]

	SortByTime(recs)
	for i := 1; i < len(recs); i++ {
		assert.False(t, recs[i].At.Before(recs[i-1].At))
	}
}

func TestParseShift(t *testing.T) {
	s, ok := ParseShift("night")
	assert.True(t, ok)
	assert.Equal(t, ShiftNight, s)

	_, ok = ParseShift("evening")
	assert.False(t, ok)
}

func TestDatesBetween(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 2, d, h, 0, 0, 0, time.UTC) }

	assert.Equal(t, []string{"2026-02-27"}, DatesBetween(day(27, 8), day(27, 8)))
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01"},
		DatesBetween(day(27, 23), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, DatesBetween(day(28, 0), day(27, 0)))

	// Bounds in another location map to their UTC file dates.
	tokyo := time.FixedZone("JST", 9*3600)
	got := DatesBetween(time.Date(2026, 2, 28, 1, 0, 0, 0, tokyo), time.Date(2026, 2, 28, 2, 0, 0, 0, tokyo))
	assert.Equal(t, []string{"2026-02-27"}, got)
}

func TestDayBoundsAndParseFileDate(t *testing.T) {
	d, err := ParseFileDate("2026-02-27")
	require.NoError(t, err)

	start, end := DayBounds(d)
	assert.Equal(t, "2026-02-27T00:00:00Z", start.Format(time.RFC3339Nano))
	assert.Equal(t, "2026-02-27T23:59:59.999Z", end.Format(time.RFC3339Nano))
	assert.Equal(t, "2026-02-27", FileDate(end))

	_, err = ParseFileDate("27/02/2026")
	assert.Error(t, err)
}
