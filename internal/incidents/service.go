package incidents

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/internal/storage"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

// DefaultPresignExpiry is how long signed clip URLs stay valid.
const DefaultPresignExpiry = time.Hour

// DefaultConcurrency bounds per-date fetches and per-record signing.
const DefaultConcurrency = 8

// ServiceConfig wires a Service. Presigner is optional.
type ServiceConfig struct {
	Fetcher       *Fetcher
	Presigner     storage.Presigner
	PresignExpiry time.Duration
	Concurrency   int
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// Service answers incident queries over dates and time ranges.
type Service struct {
	fetcher       *Fetcher
	presigner     storage.Presigner
	presignExpiry time.Duration
	concurrency   int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewService creates a new Service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		fetcher:       cfg.Fetcher,
		presigner:     cfg.Presigner,
		presignExpiry: cfg.PresignExpiry,
		concurrency:   cfg.Concurrency,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
	}
	if s.presignExpiry <= 0 {
		s.presignExpiry = DefaultPresignExpiry
	}
	if s.concurrency < 1 {
		s.concurrency = DefaultConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Rules returns the rule table records are scored with.
func (s *Service) Rules() *scoring.RuleTable {
	return s.fetcher.Rules()
}

// ForDate returns the records of one YYYY-MM-DD file date.
func (s *Service) ForDate(ctx context.Context, date string) []incident.Record {
	return s.fetcher.ForDate(ctx, date)
}

// Range returns the records whose timestamp lies in [start, end], in file
// date order and source row order within a file. An inverted range is empty.
func (s *Service) Range(ctx context.Context, start, end time.Time) []incident.Record {
	dates := incident.DatesBetween(start, end)
	if len(dates) == 0 {
		return nil
	}

	perDay := make([][]incident.Record, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, date := range dates {
		g.Go(func() error {
			perDay[i] = s.fetcher.ForDate(gctx, date)
			return nil
		})
	}
	_ = g.Wait() // ForDate never fails

	var all []incident.Record
	for _, recs := range perDay {
		all = append(all, recs...)
	}
	return incident.InRange(all, start, end)
}

// AttachVideoURLs returns a copy of records with VideoURL set for every
// record that has a clip key. Keys that are already http(s) URLs are used
// as is; others are signed when a presigner is configured. A signing
// failure leaves that record's VideoURL nil.
func (s *Service) AttachVideoURLs(ctx context.Context, records []incident.Record) []incident.Record {
	out := make([]incident.Record, len(records))
	copy(out, records)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range out {
		if out[i].ClipS3Key == nil || *out[i].ClipS3Key == "" {
			continue
		}
		key := *out[i].ClipS3Key
		if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
			u := key
			out[i].VideoURL = &u
			continue
		}
		if s.presigner == nil {
			continue
		}
		g.Go(func() error {
			u, err := s.presigner.PresignGet(gctx, key, s.presignExpiry)
			if err != nil {
				s.metrics.RecordPresign(false)
				s.logger.Warn("signing clip url failed", "clip_s3_key", key, "error", err)
				return nil
			}
			s.metrics.RecordPresign(true)
			out[i].VideoURL = &u
			return nil
		})
	}
	_ = g.Wait()
	return out
}
