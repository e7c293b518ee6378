package storage

import (
	"context"
	"fmt"

	"github.com/nodesafety/safetyscore/pkg/config"
)

// Open builds the remote store selected by cfg. It returns a nil store and
// no error when no remote backend is configured.
func Open(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, nil
	case config.BackendS3:
		s, err := NewS3Storage(ctx, S3Config{
			Bucket:      cfg.Bucket,
			Region:      cfg.Region,
			Endpoint:    cfg.Endpoint,
			AccessKey:   cfg.AccessKey,
			SecretKey:   cfg.SecretKey,
			MaxAttempts: cfg.MaxAttempts,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendGCS:
		s, err := NewGCSStorage(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// IncidentsKey is the remote key of a day's incident CSV.
func IncidentsKey(prefix, date string) string {
	return prefix + date + ".csv"
}

// LocalIncidentsKey is the key of a day's CSV inside the local directory.
func LocalIncidentsKey(date string) string {
	return date + ".csv"
}
