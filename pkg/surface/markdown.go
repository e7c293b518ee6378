package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// MarkdownRenderer produces a Markdown digest of a report, for chat or
// email.
type MarkdownRenderer struct {
	// Incidents, if set, are listed below the scores (max 10).
	Incidents []incident.Record
}

func (r *MarkdownRenderer) Render(w io.Writer, rep *report.ScoreReport) error {
	_, err := io.WriteString(w, buildMarkdownSummary(rep, r.Incidents))
	return err
}

func buildMarkdownSummary(rep *report.ScoreReport, incidents []incident.Record) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Safety score %.1f\n\n", rep.Today))

	sb.WriteString("| Period | Score | Change |\n|--------|-------|--------|\n")
	sb.WriteString(fmt.Sprintf("| Today | %.1f | %s |\n", rep.Today, signed(rep.TodayDelta)))
	sb.WriteString(fmt.Sprintf("| Week | %.1f | %s |\n", rep.Week, signed(rep.WeekDelta)))
	sb.WriteString(fmt.Sprintf("| Month | %.1f | %s |\n", rep.Month, signed(rep.MonthDelta)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("UK percentile **%d** (market average %.0f), internal average %d, rank %d/%d.\n\n",
		rep.UKPercentile, rep.UKMarketAvg, rep.InternalAvg, rep.SiteRank, rep.TotalSites))

	if len(incidents) > 0 {
		sb.WriteString("### Incidents\n\n")
		for i, inc := range incidents {
			if i >= 10 {
				sb.WriteString(fmt.Sprintf("_... and %d more incidents_\n", len(incidents)-10))
				break
			}
			sb.WriteString(fmt.Sprintf("- %s **%s** %s %s, %s\n",
				severityIcon(inc.Severity), inc.Label, inc.Date, inc.Time, inc.Location))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func severityIcon(sev scoring.Severity) string {
	switch sev {
	case scoring.SeverityHigh:
		return ":red_circle:"
	case scoring.SeverityMedium:
		return ":orange_circle:"
	case scoring.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":blue_circle:"
	}
}
