package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nodesafety/safetyscore/internal/api"
	"github.com/nodesafety/safetyscore/internal/cache"
	"github.com/nodesafety/safetyscore/internal/incidents"
	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/internal/storage"
	"github.com/nodesafety/safetyscore/pkg/config"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// App is a fully wired scoring service.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Rules     *scoring.RuleTable
	Store     storage.ObjectStore // nil without a remote backend
	Incidents *incidents.Service
	Reports   *report.Builder
}

// New wires an App from cfg. cfg must already be validated.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	rules, err := scoring.DefaultRules().WithDeductions(cfg.Scoring.Deductions, cfg.Scoring.RuleVersion)
	if err != nil {
		return nil, fmt.Errorf("scoring rules: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	csvCache, err := cache.New[[]incident.Record](cfg.Cache.Backend, "csv", cfg.Cache.TTL, cache.WithObserver(m))
	if err != nil {
		return nil, err
	}
	reportCache, err := cache.New[report.ScoreReport](cfg.Cache.Backend, "report", cfg.Cache.TTL, cache.WithObserver(m))
	if err != nil {
		return nil, err
	}

	fc := incidents.FetcherConfig{
		Prefix:  cfg.Storage.IncidentsPrefix,
		Timeout: cfg.Storage.Timeout,
		Rules:   rules,
		Cache:   csvCache,
		Metrics: m,
		Logger:  logger,
	}
	if cfg.Storage.LocalDir != "" {
		fc.Local = storage.NewLocalStorage(cfg.Storage.LocalDir)
	}
	sc := incidents.ServiceConfig{
		PresignExpiry: cfg.Storage.PresignExpiry,
		Concurrency:   cfg.Storage.FetchConcurrency,
		Metrics:       m,
		Logger:        logger,
	}
	if store != nil {
		fc.Remote = store
		sc.Presigner = store
	}
	sc.Fetcher = incidents.NewFetcher(fc)
	svc := incidents.NewService(sc)

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}
	builder := report.NewBuilder(report.Config{
		Source:   svc,
		Rules:    rules,
		Location: loc,
		Benchmark: report.Benchmark{
			UKMarketAvg: cfg.Report.UKMarketAvg,
			SiteRank:    cfg.Report.SiteRank,
			TotalSites:  cfg.Report.TotalSites,
		},
		Cache:   reportCache,
		Metrics: m,
		Logger:  logger,
	})

	logger.Info("scoring service ready",
		"storage", cfg.Storage.Backend,
		"bucket", cfg.Storage.Bucket,
		"local_dir", cfg.Storage.LocalDir,
		"cache", cfg.Cache.Backend,
		"rule_version", rules.Version(),
		"timezone", loc.String())

	return &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  reg,
		Metrics:   m,
		Rules:     rules,
		Store:     store,
		Incidents: svc,
		Reports:   builder,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	h := api.NewHandler(api.Config{
		Incidents:    a.Incidents,
		Reports:      a.Reports,
		MaxRangeDays: a.Config.Server.MaxRangeDays,
		Gatherer:     a.Registry,
		Metrics:      a.Metrics,
		Logger:       a.Logger,
	})
	return h.Routes(a.Config.Server.CORSOrigin)
}

// Close releases the remote store's client, if it holds one.
func (a *App) Close() error {
	if c, ok := a.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
