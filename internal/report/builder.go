package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nodesafety/safetyscore/internal/cache"
	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// HistoryLength is the number of days in the report history.
const HistoryLength = 7

const cacheKey = "scores"

// ScoreReport is the dashboard's safety score panel.
type ScoreReport struct {
	Today      float64 `json:"today"`
	Week       float64 `json:"week"`
	Month      float64 `json:"month"`
	TodayDelta float64 `json:"today_delta"`
	WeekDelta  float64 `json:"week_delta"`
	MonthDelta float64 `json:"month_delta"`

	History []HistoryPoint `json:"history"`

	UKMarketAvg  float64 `json:"uk_market_avg"`
	UKPercentile int     `json:"uk_percentile"`
	InternalAvg  int     `json:"internal_avg"`
	SiteRank     int     `json:"site_rank"`
	TotalSites   int     `json:"total_sites"`

	GeneratedAt time.Time `json:"generated_at"`
	RuleVersion string    `json:"rule_version"`
}

// HistoryPoint is one day's score, labelled with its short weekday name.
type HistoryPoint struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// RangeSource returns the incidents in an inclusive time range.
type RangeSource interface {
	Range(ctx context.Context, start, end time.Time) []incident.Record
}

// Config wires a Builder.
type Config struct {
	Source    RangeSource
	Rules     *scoring.RuleTable
	Location  *time.Location
	Benchmark Benchmark
	Cache     cache.Store[ScoreReport]
	Now       func() time.Time
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Builder assembles ScoreReports.
type Builder struct {
	source    RangeSource
	rules     *scoring.RuleTable
	loc       *time.Location
	benchmark Benchmark
	cache     cache.Store[ScoreReport]
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewBuilder creates a Builder, filling unset fields with defaults.
func NewBuilder(cfg Config) *Builder {
	b := &Builder{
		source:    cfg.Source,
		rules:     cfg.Rules,
		loc:       cfg.Location,
		benchmark: cfg.Benchmark,
		cache:     cfg.Cache,
		now:       cfg.Now,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if b.rules == nil {
		b.rules = scoring.DefaultRules()
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.benchmark.UKMarketAvg <= 0 || b.benchmark.UKMarketAvg >= 100 {
		b.benchmark.UKMarketAvg = DefaultBenchmark.UKMarketAvg
	}
	if b.benchmark.TotalSites == 0 {
		b.benchmark.SiteRank = DefaultBenchmark.SiteRank
		b.benchmark.TotalSites = DefaultBenchmark.TotalSites
	}
	if b.cache == nil {
		b.cache = cache.NewTTL[ScoreReport]("report", cache.DefaultTTL)
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Build returns the current report, from cache when fresh. It never fails:
// periods whose data cannot be loaded score as incident-free.
func (b *Builder) Build(ctx context.Context) ScoreReport {
	if r, ok := b.cache.Get(cacheKey); ok {
		return r
	}

	started := time.Now()
	now := b.now()
	r := b.build(ctx, now)
	b.cache.Set(cacheKey, r)

	b.metrics.ObserveReportBuild(time.Since(started))
	b.logger.Debug("built score report",
		"today", r.Today, "week", r.Week, "month", r.Month,
		"duration", time.Since(started))
	return r
}

func (b *Builder) build(ctx context.Context, now time.Time) ScoreReport {
	w := ComputeWindows(now, b.loc)
	periods := []Window{w.Today, w.Yesterday, w.Week, w.LastWeek, w.Month, w.LastMonth}
	days := HistoryDays(now, b.loc, HistoryLength)

	periodScores := make([]float64, len(periods))
	historyScores := make([]float64, len(days))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range periods {
		g.Go(func() error {
			periodScores[i] = b.score(gctx, p)
			return nil
		})
	}
	for i, d := range days {
		g.Go(func() error {
			historyScores[i] = b.score(gctx, d.Window)
			return nil
		})
	}
	_ = g.Wait()

	today, yesterday := periodScores[0], periodScores[1]
	week, lastWeek := periodScores[2], periodScores[3]
	month, lastMonth := periodScores[4], periodScores[5]

	history := make([]HistoryPoint, len(days))
	for i, d := range days {
		history[i] = HistoryPoint{Label: d.Label, Score: historyScores[i]}
	}

	return ScoreReport{
		Today:        today,
		Week:         week,
		Month:        month,
		TodayDelta:   scoring.RoundTenth(today - yesterday),
		WeekDelta:    scoring.RoundTenth(week - lastWeek),
		MonthDelta:   scoring.RoundTenth(month - lastMonth),
		History:      history,
		UKMarketAvg:  b.benchmark.UKMarketAvg,
		UKPercentile: Percentile(today, b.benchmark.UKMarketAvg),
		InternalAvg:  Mean(historyScores),
		SiteRank:     b.benchmark.SiteRank,
		TotalSites:   b.benchmark.TotalSites,
		GeneratedAt:  now,
		RuleVersion:  b.rules.Version(),
	}
}

func (b *Builder) score(ctx context.Context, w Window) float64 {
	return scoring.Score(b.rules, b.source.Range(ctx, w.Start, w.End))
}
