package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"match-sync/core/storage"
	"match-sync/feature/matches"

	"go.uber.org/zap"
)

// StorageScraper reads exports uploaded to object storage by the browser
// scraper.
type StorageScraper struct {
	session
	client storage.Client
	bucket string
	prefix string
	key    string
}

// NewStorageScraper creates a scraper over bucket/prefix.
func NewStorageScraper(client storage.Client, bucket, prefix string, logger *zap.Logger) *StorageScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageScraper{
		session: session{logger: logger},
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
	}
}

// Navigate checks that the export bucket is reachable.
func (s *StorageScraper) Navigate(ctx context.Context) error {
	if s.client == nil {
		return ErrScraperUnavailable
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s: %w", s.bucket, storage.ErrObjectNotFound)
	}
	return nil
}

// ApplyFilters selects the export object for f and checks that it exists.
func (s *StorageScraper) ApplyFilters(ctx context.Context, f Filters) error {
	if err := s.applyFilters(f); err != nil {
		return err
	}
	key := ExportKey(s.prefix, f)
	ok, err := storage.ObjectExists(ctx, s.client, s.bucket, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrExportNotFound, s.bucket, key)
	}
	s.key = key
	return nil
}

// SetDateRange sets the extraction window.
func (s *StorageScraper) SetDateRange(ctx context.Context, start, end time.Time) error {
	return s.setDateRange(start, end)
}

// ExtractMatches downloads and filters the export.
func (s *StorageScraper) ExtractMatches(ctx context.Context) ([]matches.Match, error) {
	if s.key == "" {
		return nil, fmt.Errorf("%w: extract before filters", ErrStageOrder)
	}
	var export Export
	if err := storage.GetJSON(ctx, s.client, s.bucket, s.key, &export); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrExportNotFound, err)
		}
		if errors.Is(err, storage.ErrMalformedObject) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedExport, err)
		}
		return nil, err
	}
	return s.extract(export)
}

// Close releases the scraper. It is safe to call more than once.
func (s *StorageScraper) Close() error {
	s.closed = true
	s.key = ""
	return nil
}
