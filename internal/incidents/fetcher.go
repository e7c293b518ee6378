// Package incidents loads parsed incident records for dates and time ranges
// from local and remote storage, and signs their clip URLs.
package incidents

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nodesafety/safetyscore/internal/cache"
	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/internal/storage"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// FetcherConfig wires a Fetcher. Local and Remote are optional.
type FetcherConfig struct {
	Local   storage.Getter
	Remote  storage.Getter
	Prefix  string        // remote key prefix, e.g. "incidents/"
	Timeout time.Duration // per remote call; 0 means no extra bound
	Rules   *scoring.RuleTable
	Cache   cache.Store[[]incident.Record]
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Fetcher returns the parsed records for one file date, reading the local
// directory first, then the remote store.
type Fetcher struct {
	local   storage.Getter
	remote  storage.Getter
	prefix  string
	timeout time.Duration
	parser  *incident.Parser
	cache   cache.Store[[]incident.Record]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. A nil Cache gets a private TTL cache; a nil
// Rules gets the built-in table.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rules := cfg.Rules
	if rules == nil {
		rules = scoring.DefaultRules()
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewTTL[[]incident.Record]("csv", cache.DefaultTTL)
	}
	m := cfg.Metrics
	return &Fetcher{
		local:   cfg.Local,
		remote:  cfg.Remote,
		prefix:  cfg.Prefix,
		timeout: cfg.Timeout,
		parser: &incident.Parser{
			Rules:  rules,
			Logger: logger,
			OnSkip: func(r incident.SkipReason) { m.RecordSkippedRow(string(r)) },
		},
		cache:   c,
		metrics: m,
		logger:  logger,
	}
}

// Rules returns the rule table records are parsed against.
func (f *Fetcher) Rules() *scoring.RuleTable {
	return f.parser.Rules
}

// ForDate returns the records of the given YYYY-MM-DD file date. It never
// fails: a missing file yields no records and is cached as such; a remote
// failure yields no records and is retried on the next call.
func (f *Fetcher) ForDate(ctx context.Context, date string) []incident.Record {
	key := "csv:" + date
	if recs, ok := f.cache.Get(key); ok {
		return recs
	}

	if f.local != nil {
		data, err := f.local.Get(ctx, storage.LocalIncidentsKey(date))
		switch {
		case err == nil:
			f.metrics.RecordFetch(metrics.SourceLocal, metrics.StatusFound)
			recs := f.parser.Parse(string(data))
			f.cache.Set(key, recs)
			return recs
		case errors.Is(err, storage.ErrNotFound):
			f.metrics.RecordFetch(metrics.SourceLocal, metrics.StatusNotFound)
		default:
			f.metrics.RecordFetch(metrics.SourceLocal, metrics.StatusError)
			f.logger.Warn("reading local incidents failed", "date", date, "error", err)
		}
	}

	if f.remote == nil {
		f.cache.Set(key, nil)
		return nil
	}

	rctx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	data, err := f.remote.Get(rctx, storage.IncidentsKey(f.prefix, date))
	switch {
	case err == nil:
		f.metrics.RecordFetch(metrics.SourceRemote, metrics.StatusFound)
		recs := f.parser.Parse(string(data))
		f.cache.Set(key, recs)
		return recs
	case errors.Is(err, storage.ErrNotFound):
		f.metrics.RecordFetch(metrics.SourceRemote, metrics.StatusNotFound)
		f.cache.Set(key, nil)
		return nil
	default:
		f.metrics.RecordFetch(metrics.SourceRemote, metrics.StatusError)
		f.logger.Warn("fetching remote incidents failed", "date", date, "error", err)
		return nil
	}
}
