// Package incident defines the incident record derived from edge-device CSV
// logs and the parser that produces it.
package incident

import (
	"sort"
	"time"

	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// Shift is the working shift an incident falls in.
type Shift string

const (
	ShiftMorning   Shift = "morning"   // [06:00, 14:00) UTC
	ShiftAfternoon Shift = "afternoon" // [14:00, 22:00) UTC
	ShiftNight     Shift = "night"
)

// Record is one incident, parsed from one CSV row and enriched with the
// matching rule's fields. Records are immutable once parsed, except that
// VideoURL is filled in on a copy by the URL augmentation step.
type Record struct {
	ID              string  `json:"id"`
	Timestamp       string  `json:"timestamp"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	IncidentType    string  `json:"incident_type"`
	SafetyEventType string  `json:"safety_event_type"` // alias of incident_type kept for the dashboard
	CameraID        string  `json:"camera_id"`
	BuildingName    string  `json:"building_name"`
	FloorNum        int     `json:"floor_num"`
	Location        string  `json:"location"`
	ClipS3Key       *string `json:"clip_s3_key"`
	VideoURL        *string `json:"video_url"`
	Duration        *string `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`

	// Copied from the rule table at parse time.
	RiskScore   int              `json:"risk_score"`
	Severity    scoring.Severity `json:"severity"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Emoji       string           `json:"emoji"`
	Group       scoring.Group    `json:"group"`
	Deduction   float64          `json:"deduction"`
	RuleVersion string           `json:"rule_version"`

	Shift Shift `json:"shift"`

	// At is the parsed Timestamp, used for range filtering.
	At time.Time `json:"-"`
}

// RuleKey implements scoring.Scorable.
func (r Record) RuleKey() string {
	return r.IncidentType
}

// ShiftAt classifies an instant by its UTC hour.
func ShiftAt(t time.Time) Shift {
	h := t.UTC().Hour()
	switch {
	case h >= 6 && h < 14:
		return ShiftMorning
	case h >= 14 && h < 22:
		return ShiftAfternoon
	default:
		return ShiftNight
	}
}

// ParseShift validates a shift name.
func ParseShift(s string) (Shift, bool) {
	switch sh := Shift(s); sh {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return sh, true
	}
	return "", false
}

// SortByTime orders records by timestamp, oldest first. Records with equal
// timestamps keep their relative order.
func SortByTime(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].At.Before(records[j].At)
	})
}
