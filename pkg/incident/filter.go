package incident

import (
	"time"

	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// Filter selects records for the incidents view. Zero-valued fields match
// everything.
type Filter struct {
	Shift Shift
	Type  string
	Group scoring.Group
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	if f.Shift != "" && r.Shift != f.Shift {
		return false
	}
	if f.Type != "" && r.IncidentType != f.Type {
		return false
	}
	if f.Group != "" && r.Group != f.Group {
		return false
	}
	return true
}

// Apply returns the matching records in input order.
func (f Filter) Apply(records []Record) []Record {
	if f == (Filter{}) {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// InRange keeps records with start <= At <= end.
func InRange(records []Record, start, end time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.At.Before(start) && !r.At.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// Stats counts records along the dashboard's breakdowns.
type Stats struct {
	Total      int                      `json:"total_incidents"`
	ByType     map[string]int           `json:"by_type"`
	ByGroup    map[scoring.Group]int    `json:"by_group"`
	ByShift    map[Shift]int            `json:"by_shift"`
	BySeverity map[scoring.Severity]int `json:"by_severity"`
}

// Summarize builds Stats over records.
func Summarize(records []Record) Stats {
	s := Stats{
		Total:      len(records),
		ByType:     make(map[string]int),
		ByGroup:    make(map[scoring.Group]int),
		ByShift:    make(map[Shift]int),
		BySeverity: make(map[scoring.Severity]int),
	}
	for _, r := range records {
		s.ByType[r.IncidentType]++
		s.ByGroup[r.Group]++
		s.ByShift[r.Shift]++
		s.BySeverity[r.Severity]++
	}
	return s
}
