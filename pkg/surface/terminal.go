package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// TerminalRenderer renders reports, incidents and rules as colored
// terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// scoreColor bands a 0-100 score.
func scoreColor(score float64) string {
	if noColor() {
		return ""
	}
	switch {
	case score >= 90:
		return colorGreen
	case score >= 75:
		return colorYellow
	default:
		return colorRed
	}
}

func severityColor(sev scoring.Severity) string {
	switch sev {
	case scoring.SeverityHigh:
		return colorRed
	case scoring.SeverityMedium:
		return colorYellow
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func signed(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func (r *TerminalRenderer) Render(w io.Writer, rep *report.ScoreReport) error {
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Safety score today: %s",
			colored(fmt.Sprintf("%.1f", rep.Today), scoreColor(rep.Today)))))

	fmt.Fprintf(w, "  %-6s %6s  %s\n", "Today", fmt.Sprintf("%.1f", rep.Today), dim(signed(rep.TodayDelta)+" vs yesterday"))
	fmt.Fprintf(w, "  %-6s %6s  %s\n", "Week", fmt.Sprintf("%.1f", rep.Week), dim(signed(rep.WeekDelta)+" vs last week"))
	fmt.Fprintf(w, "  %-6s %6s  %s\n\n", "Month", fmt.Sprintf("%.1f", rep.Month), dim(signed(rep.MonthDelta)+" vs last month"))

	if len(rep.History) > 0 {
		fmt.Fprintln(w, "Last 7 days:")
		for _, h := range rep.History {
			bar := strings.Repeat("█", int(h.Score/5))
			fmt.Fprintf(w, "  %s %5.1f %s\n", h.Label, h.Score, colored(bar, scoreColor(h.Score)))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Benchmark:")
	fmt.Fprintf(w, "  UK market average %.0f, site at percentile %d\n", rep.UKMarketAvg, rep.UKPercentile)
	fmt.Fprintf(w, "  7-day internal average %d, rank %d of %d sites\n", rep.InternalAvg, rep.SiteRank, rep.TotalSites)
	if rep.RuleVersion != "" {
		fmt.Fprintf(w, "\n%s\n", dim("rules "+rep.RuleVersion))
	}
	return nil
}

// RenderIncidents writes one line per incident.
func (r *TerminalRenderer) RenderIncidents(w io.Writer, records []incident.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No incidents.")
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(w, "%s %s  %-9s %s %s\n",
			rec.Date, rec.Time,
			rec.Shift,
			colored(fmt.Sprintf("%-6s", rec.Severity), severityColor(rec.Severity)),
			bold(rec.Label))
		fmt.Fprintf(w, "    %s\n", dim(fmt.Sprintf("%s, %s floor %d, %s", rec.Location, rec.BuildingName, rec.FloorNum, rec.CameraID)))
	}
	fmt.Fprintf(w, "\n%d incidents\n", len(records))
	return nil
}

// RenderRules lists the rule table.
func (r *TerminalRenderer) RenderRules(w io.Writer, rules *scoring.RuleTable) error {
	fmt.Fprintf(w, "%s\n\n", bold("Scoring rules "+rules.Version()))
	for _, key := range rules.Keys() {
		rule, _ := rules.Lookup(key)
		fmt.Fprintf(w, "  %s %s  %s\n", rule.Emoji, bold(rule.Label),
			dim(fmt.Sprintf("-%.1f pts, risk %d, %s", rule.Deduction, rule.RiskScore, rule.Severity)))
		for _, line := range wrapText(rule.Description, 70) {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintf(w, "    %s\n", dim(key))
	}
	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
