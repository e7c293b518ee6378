package incidents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nodesafety/safetyscore/internal/cache"
	"github.com/nodesafety/safetyscore/internal/metrics"
	"github.com/nodesafety/safetyscore/internal/storage"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const header = "timestamp,incident_type,camera_id,building_name,floor_num,location,clip_s3_key,duration_seconds\n"

// fakeStore serves objects from a map and counts Get calls per key.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	errs    map[string]error
	calls   map[string]int

	signErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: map[string]string{},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, storage.ErrNotFound)
	}
	return []byte(data), nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://signed.example/%s?expires=%d", key, int(expires.Seconds())), nil
}

func (f *fakeStore) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestForDateLocalFirst(t *testing.T) {
	local, remote := newFakeStore(), newFakeStore()
	local.objects["2026-02-16.csv"] = header + "2026-02-16T09:00:00Z,no-high-vis,cam-01,A,1,Dock,,\n"
	remote.objects["incidents/2026-02-16.csv"] = header + "2026-02-16T10:00:00Z,dock-door-open,cam-02,A,1,Dock,,\n"

	f := NewFetcher(FetcherConfig{Local: local, Remote: remote, Prefix: "incidents/"})
	recs := f.ForDate(context.Background(), "2026-02-16")

	require.Len(t, recs, 1)
	assert.Equal(t, "no-high-vis", recs[0].IncidentType)
	assert.Equal(t, 0, remote.callCount("incidents/2026-02-16.csv"))
}

func TestForDateRemoteFallbackAndCache(t *testing.T) {
	local, remote := newFakeStore(), newFakeStore()
	remote.objects["incidents/2026-02-16.csv"] = header +
		"2026-02-16T10:00:00Z,dock-door-open,cam-02,A,1,Dock,,\n" +
		"2026-02-16T11:00:00Z,walkway-exit,cam-03,A,2,Aisle 4,,\n"

	f := NewFetcher(FetcherConfig{Local: local, Remote: remote, Prefix: "incidents/"})
	ctx := context.Background()

	first := f.ForDate(ctx, "2026-02-16")
	second := f.ForDate(ctx, "2026-02-16")

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, remote.callCount("incidents/2026-02-16.csv"))
	assert.Equal(t, 1, local.callCount("2026-02-16.csv"))
}

func TestForDateNotFoundIsCached(t *testing.T) {
	remote := newFakeStore()
	f := NewFetcher(FetcherConfig{Remote: remote, Prefix: "incidents/"})
	ctx := context.Background()

	assert.Empty(t, f.ForDate(ctx, "2026-01-01"))
	assert.Empty(t, f.ForDate(ctx, "2026-01-01"))
	assert.Equal(t, 1, remote.callCount("incidents/2026-01-01.csv"))
}

func TestForDateRemoteErrorIsNotCached(t *testing.T) {
	remote := newFakeStore()
	remote.errs["incidents/2026-01-01.csv"] = errors.New("connection reset")
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	f := NewFetcher(FetcherConfig{Remote: remote, Prefix: "incidents/", Metrics: m})
	ctx := context.Background()

	assert.Empty(t, f.ForDate(ctx, "2026-01-01"))
	delete(remote.errs, "incidents/2026-01-01.csv")
	remote.objects["incidents/2026-01-01.csv"] = header + "2026-01-01T08:00:00Z,no-high-vis,cam-01,A,1,Dock,,\n"

	assert.Len(t, f.ForDate(ctx, "2026-01-01"), 1)
	assert.Equal(t, 2, remote.callCount("incidents/2026-01-01.csv"))

	count, err := testutil.GatherAndCount(reg, "safetyscore_source_fetches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count) // remote/error and remote/found
}

func TestForDateNoStorage(t *testing.T) {
	f := NewFetcher(FetcherConfig{})
	assert.Empty(t, f.ForDate(context.Background(), "2026-02-16"))
}

func TestForDateRemoteTimeout(t *testing.T) {
	blocking := &blockingGetter{}
	f := NewFetcher(FetcherConfig{Remote: blocking, Timeout: 20 * time.Millisecond})

	start := time.Now()
	assert.Empty(t, f.ForDate(context.Background(), "2026-02-16"))
	assert.Less(t, time.Since(start), 5*time.Second)
}

type blockingGetter struct{}

func (blockingGetter) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestForDateCountsSkippedRows(t *testing.T) {
	local := newFakeStore()
	local.objects["2026-02-16.csv"] = header +
		"2026-02-16T09:00:00Z,no-high-vis,cam-01,A,1,Dock,,\n" +
		"2026-02-16T09:05:00Z,forklift-party,cam-01,A,1,Dock,,\n"
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	f := NewFetcher(FetcherConfig{Local: local, Metrics: m})
	assert.Len(t, f.ForDate(context.Background(), "2026-02-16"), 1)
}

func TestRange(t *testing.T) {
	local := newFakeStore()
	local.objects["2026-02-15.csv"] = header +
		"2026-02-15T23:30:00Z,walkway-exit,cam-01,A,1,Aisle,,\n"
	local.objects["2026-02-16.csv"] = header +
		"2026-02-16T00:30:00Z,no-high-vis,cam-02,A,1,Dock,,\n" +
		"2026-02-16T12:00:00Z,mhe-close-1m,cam-03,A,1,Dock,,\n"

	svc := NewService(ServiceConfig{Fetcher: NewFetcher(FetcherConfig{Local: local})})
	ctx := context.Background()

	t.Run("spans files in date order", func(t *testing.T) {
		recs := svc.Range(ctx, mustTime(t, "2026-02-15T00:00:00Z"), mustTime(t, "2026-02-16T23:59:59Z"))
		require.Len(t, recs, 3)
		assert.Equal(t, "walkway-exit", recs[0].IncidentType)
		assert.Equal(t, "no-high-vis", recs[1].IncidentType)
		assert.Equal(t, "mhe-close-1m", recs[2].IncidentType)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		at := mustTime(t, "2026-02-16T12:00:00Z")
		recs := svc.Range(ctx, at, at)
		require.Len(t, recs, 1)
		assert.Equal(t, "mhe-close-1m", recs[0].IncidentType)
	})

	t.Run("filters within a file", func(t *testing.T) {
		recs := svc.Range(ctx, mustTime(t, "2026-02-16T00:00:00Z"), mustTime(t, "2026-02-16T06:00:00Z"))
		require.Len(t, recs, 1)
		assert.Equal(t, "no-high-vis", recs[0].IncidentType)
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		assert.Empty(t, svc.Range(ctx, mustTime(t, "2026-02-16T12:00:00Z"), mustTime(t, "2026-02-15T12:00:00Z")))
	})

	t.Run("non-UTC bounds map to UTC files", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*3600)
		start := time.Date(2026, 2, 16, 1, 0, 0, 0, loc) // 2026-02-15T23:00Z
		end := time.Date(2026, 2, 16, 2, 59, 0, 0, loc)  // 2026-02-16T00:59Z
		recs := svc.Range(ctx, start, end)
		require.Len(t, recs, 2)
	})
}

func TestRangeScoresEndToEnd(t *testing.T) {
	local := newFakeStore()
	local.objects["2026-02-16.csv"] = header +
		"2026-02-16T08:00:00Z,no-high-vis,cam-01,A,1,Dock,,\n" +
		"2026-02-16T09:00:00Z,mhe-close-1m,cam-02,A,1,Dock,,\n"

	svc := NewService(ServiceConfig{Fetcher: NewFetcher(FetcherConfig{Local: local})})
	start, end := incident.DayBounds(mustTime(t, "2026-02-16T00:00:00Z"))

	recs := svc.Range(context.Background(), start, end)
	assert.Equal(t, 80.0, scoring.Score(svc.Rules(), recs))
}

func TestAttachVideoURLs(t *testing.T) {
	clip := "clips/cam-01/1.mp4"
	direct := "https://cdn.example/clip.mp4"
	records := []incident.Record{
		{ID: "a", ClipS3Key: &clip},
		{ID: "b", ClipS3Key: &direct},
		{ID: "c"},
	}

	t.Run("signs keys and passes urls through", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(ServiceConfig{
			Fetcher:       NewFetcher(FetcherConfig{}),
			Presigner:     store,
			PresignExpiry: 10 * time.Minute,
		})

		out := svc.AttachVideoURLs(context.Background(), records)
		require.Len(t, out, 3)
		require.NotNil(t, out[0].VideoURL)
		assert.Equal(t, "https://signed.example/clips/cam-01/1.mp4?expires=600", *out[0].VideoURL)
		require.NotNil(t, out[1].VideoURL)
		assert.Equal(t, direct, *out[1].VideoURL)
		assert.Nil(t, out[2].VideoURL)

		// input untouched
		for _, r := range records {
			assert.Nil(t, r.VideoURL)
		}
	})

	t.Run("no presigner", func(t *testing.T) {
		svc := NewService(ServiceConfig{Fetcher: NewFetcher(FetcherConfig{})})
		out := svc.AttachVideoURLs(context.Background(), records)
		assert.Nil(t, out[0].VideoURL)
		require.NotNil(t, out[1].VideoURL)
		assert.Equal(t, direct, *out[1].VideoURL)
	})

	t.Run("signing failure leaves url nil", func(t *testing.T) {
		store := newFakeStore()
		store.signErr = errors.New("no credentials")
		svc := NewService(ServiceConfig{Fetcher: NewFetcher(FetcherConfig{}), Presigner: store})

		out := svc.AttachVideoURLs(context.Background(), records)
		assert.Nil(t, out[0].VideoURL)
		assert.NotNil(t, out[1].VideoURL)
	})
}

func TestFetcherUsesInjectedCache(t *testing.T) {
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	c := cache.NewTTL[[]incident.Record]("csv", time.Minute, cache.WithClock(func() time.Time { return now }))
	remote := newFakeStore()

	f := NewFetcher(FetcherConfig{Remote: remote, Cache: c})
	ctx := context.Background()

	f.ForDate(ctx, "2026-02-16")
	now = now.Add(time.Minute + time.Millisecond)
	f.ForDate(ctx, "2026-02-16")

	assert.Equal(t, 2, remote.callCount("2026-02-16.csv"))
}
