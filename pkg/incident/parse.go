package incident

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// Header is the expected column order of an incident CSV.
var Header = []string{
	"timestamp", "incident_type", "camera_id", "building_name",
	"floor_num", "location", "clip_s3_key", "duration_seconds",
}

// SkipReason says why a data row was dropped.
type SkipReason string

const (
	SkipShortRow     SkipReason = "short_row"
	SkipUnknownType  SkipReason = "unknown_type"
	SkipBadTimestamp SkipReason = "bad_timestamp"
)

// Parser turns a day's CSV text into records. A bad row never fails the
// whole file: it is skipped and reported through Logger and OnSkip.
type Parser struct {
	Rules  *scoring.RuleTable
	Logger *slog.Logger

	// OnSkip, if set, is called once per dropped row.
	OnSkip func(reason SkipReason)
}

// Parse parses text with the given rules and the default logger.
func Parse(text string, rules *scoring.RuleTable) []Record {
	p := Parser{Rules: rules}
	return p.Parse(text)
}

// Parse returns the records in text in source row order. Files without a
// header and at least one data row yield an empty result.
func (p *Parser) Parse(text string) []Record {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil
	}

	headers := strings.Split(lines[0], ",")
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	records := make([]Record, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		vals := splitRow(lines[i])
		if len(vals) < len(headers) {
			p.skip(SkipShortRow)
			continue
		}

		row := make(map[string]string, len(headers))
		for idx, h := range headers {
			row[h] = vals[idx]
		}

		rule, ok := p.Rules.Lookup(row["incident_type"])
		if !ok {
			logger.Warn("unknown incident type, skipping row",
				"incident_type", row["incident_type"], "row", i+1)
			p.skip(SkipUnknownType)
			continue
		}

		at, err := time.Parse(time.RFC3339Nano, row["timestamp"])
		if err != nil {
			logger.Warn("unparsable timestamp, skipping row",
				"timestamp", row["timestamp"], "row", i+1)
			p.skip(SkipBadTimestamp)
			continue
		}

		records = append(records, newRecord(row, at, rule, p.Rules.Version()))
	}
	return records
}

func (p *Parser) skip(reason SkipReason) {
	if p.OnSkip != nil {
		p.OnSkip(reason)
	}
}

func newRecord(row map[string]string, at time.Time, rule scoring.Rule, ruleVersion string) Record {
	ts := row["timestamp"]
	r := Record{
		ID:              ts + "-" + row["camera_id"],
		Timestamp:       ts,
		Date:            ts[:10],
		Time:            ts[11:19],
		IncidentType:    row["incident_type"],
		SafetyEventType: row["incident_type"],
		CameraID:        row["camera_id"],
		BuildingName:    row["building_name"],
		FloorNum:        parseFloor(row["floor_num"]),
		Location:        row["location"],
		RiskScore:       rule.RiskScore,
		Severity:        rule.Severity,
		Label:           rule.Label,
		Description:     rule.Description,
		Emoji:           rule.Emoji,
		Group:           rule.Group,
		Deduction:       rule.Deduction,
		RuleVersion:     ruleVersion,
		Shift:           ShiftAt(at),
		At:              at,
	}
	if key := row["clip_s3_key"]; key != "" {
		r.ClipS3Key = &key
	}
	if secs, ok := parseSeconds(row["duration_seconds"]); ok {
		display := fmt.Sprintf("%.1fs", secs)
		r.Duration = &display
		r.DurationSeconds = secs
	}
	return r
}

// parseFloor defaults to the first floor; 0 is treated as missing.
func parseFloor(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 1
	}
	return n
}

func parseSeconds(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// splitRow splits one CSV line on commas outside double quotes. Quote
// characters toggle the quoted state and are dropped; fields are trimmed.
func splitRow(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}
