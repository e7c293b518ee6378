package surface_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
	"github.com/nodesafety/safetyscore/pkg/surface"
)

func sampleReport() *report.ScoreReport {
	return &report.ScoreReport{
		Today:      80.0,
		Week:       91.5,
		Month:      88.0,
		TodayDelta: -10.0,
		WeekDelta:  2.5,
		MonthDelta: 0,
		History: []report.HistoryPoint{
			{Label: "Thu", Score: 100}, {Label: "Fri", Score: 95},
			{Label: "Sat", Score: 100}, {Label: "Sun", Score: 100},
			{Label: "Mon", Score: 97.5}, {Label: "Tue", Score: 90},
			{Label: "Wed", Score: 80},
		},
		UKMarketAvg:  74,
		UKPercentile: 61,
		InternalAvg:  95,
		SiteRank:     3,
		TotalSites:   12,
		GeneratedAt:  time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC),
		RuleVersion:  scoring.DefaultRuleVersion,
	}
}

func sampleRecords() []incident.Record {
	text := "timestamp,incident_type,camera_id,building_name,floor_num,location,clip_s3_key,duration_seconds\n" +
		"2026-02-18T09:15:30Z,no-high-vis,cam-07,Warehouse A,1,\"Dock 3, north\",clips/1.mp4,12.5\n" +
		"2026-02-18T15:02:00Z,mhe-close-1m,cam-02,Warehouse A,2,Aisle 14,,\n"
	return incident.Parse(text, scoring.DefaultRules())
}

func noColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).Render(&buf, sampleReport()))
	output := buf.String()

	assert.Contains(t, output, "Safety score today: 80.0")
	assert.Contains(t, output, "-10.0 vs yesterday")
	assert.Contains(t, output, "+2.5 vs last week")
	assert.Contains(t, output, "0.0 vs last month")
	assert.Contains(t, output, "Wed  80.0")
	assert.Contains(t, output, "percentile 61")
	assert.Contains(t, output, "rank 3 of 12 sites")
	assert.Contains(t, output, "rules "+scoring.DefaultRuleVersion)
	assert.NotContains(t, output, "\033[")
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	if v, ok := os.LookupEnv("NO_COLOR"); ok {
		os.Unsetenv("NO_COLOR")
		defer os.Setenv("NO_COLOR", v)
	}

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "\033[", "expected ANSI escape codes when NO_COLOR is not set")
}

func TestTerminalRenderer_Incidents(t *testing.T) {
	noColor(t)
	r := &surface.TerminalRenderer{}

	var buf bytes.Buffer
	require.NoError(t, r.RenderIncidents(&buf, sampleRecords()))
	output := buf.String()
	assert.Contains(t, output, "2026-02-18 09:15:30")
	assert.Contains(t, output, "Dock 3, north")
	assert.Contains(t, output, "afternoon")
	assert.Contains(t, output, "2 incidents")

	buf.Reset()
	require.NoError(t, r.RenderIncidents(&buf, nil))
	assert.Equal(t, "No incidents.\n", buf.String())
}

func TestTerminalRenderer_Rules(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, (&surface.TerminalRenderer{}).RenderRules(&buf, scoring.DefaultRules()))
	output := buf.String()
	for _, key := range scoring.DefaultRules().Keys() {
		assert.Contains(t, output, key)
	}
	assert.Contains(t, output, "-10.0 pts, risk 90, high")
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := &surface.MarkdownRenderer{Incidents: sampleRecords()}
	require.NoError(t, r.Render(&buf, sampleReport()))
	output := buf.String()

	assert.Contains(t, output, "## Safety score 80.0")
	assert.Contains(t, output, "| Week | 91.5 | +2.5 |")
	assert.Contains(t, output, "UK percentile **61**")
	assert.Contains(t, output, ":red_circle:")
}

func TestMarkdownRenderer_TruncatesIncidents(t *testing.T) {
	recs := make([]incident.Record, 12)
	var buf bytes.Buffer
	require.NoError(t, (&surface.MarkdownRenderer{Incidents: recs}).Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "_... and 2 more incidents_")
}

func TestRendererFor(t *testing.T) {
	for _, f := range []string{"", "text", "json", "markdown"} {
		r, err := surface.RendererFor(f)
		require.NoError(t, err, f)
		assert.NotNil(t, r)
	}
	_, err := surface.RendererFor("html")
	assert.Error(t, err)
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&surface.JSONRenderer{}).Render(&buf, sampleReport()))
	assert.Contains(t, buf.String(), `"uk_percentile": 61`)
	assert.Contains(t, buf.String(), `"history": [`)
}
