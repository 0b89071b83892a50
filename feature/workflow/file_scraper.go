package workflow

import (
	"context"
	"fmt"
	"os"
	"time"

	"match-sync/feature/matches"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// FileScraper reads a local export file.
type FileScraper struct {
	session
	path string
}

// NewFileScraper creates a scraper over the export at path.
func NewFileScraper(path string, logger *zap.Logger) *FileScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileScraper{session: session{logger: logger}, path: path}
}

// Navigate checks that the export file exists.
func (s *FileScraper) Navigate(ctx context.Context) error {
	if s.path == "" {
		return ErrScraperUnavailable
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportNotFound, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrExportNotFound, s.path)
	}
	return nil
}

// ApplyFilters records f; the export is checked against it on extraction.
func (s *FileScraper) ApplyFilters(ctx context.Context, f Filters) error {
	return s.applyFilters(f)
}

// SetDateRange sets the extraction window.
func (s *FileScraper) SetDateRange(ctx context.Context, start, end time.Time) error {
	return s.setDateRange(start, end)
}

// ExtractMatches reads, decodes and filters the export.
func (s *FileScraper) ExtractMatches(ctx context.Context) ([]matches.Match, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", s.path, err)
	}
	var export Export
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMalformedExport, s.path, err)
	}
	return s.extract(export)
}

// Close releases the scraper.
func (s *FileScraper) Close() error {
	s.closed = true
	return nil
}
