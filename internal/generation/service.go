package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/workbook"
)

// ContentType is the OOXML spreadsheet package media type used when the
// generated artifact is streamed to a caller.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	// DefaultProvider is recorded when a request carries no provider tag.
	DefaultProvider = "auto"

	// DefaultListLimit caps how many records a listing returns.
	DefaultListLimit = 100

	// defaultStoreTimeout bounds each record-store call so a slow store can
	// never hold up document delivery.
	defaultStoreTimeout = 5 * time.Second
)

// RecordStore is the append-only store for generation records. Both
// operations fail only on store unavailability, never on record validity.
type RecordStore interface {
	Append(ctx context.Context, record *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}

// Service builds workbooks, encodes them, and records metadata about each
// generation. Persistence is best-effort: a failed append is logged and the
// artifact is still delivered.
type Service struct {
	builder      *workbook.Builder
	encoder      *workbook.Encoder
	store        RecordStore
	storeTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// NewService creates a generation service backed by the given record store.
func NewService(store RecordStore, logger *zap.Logger) *Service {
	return &Service{
		builder:      workbook.NewBuilder(),
		encoder:      workbook.NewEncoder(logger),
		store:        store,
		storeTimeout: defaultStoreTimeout,
		logger:       logger,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// Generate builds and encodes a workbook for the description, records the
// generation, and returns the encoded bytes with a suggested filename.
// Encoding failures are fatal; record-store failures are swallowed so they
// never block delivery of the already-computed artifact.
func (s *Service) Generate(ctx context.Context, description, provider string) ([]byte, string, error) {
	doc := s.builder.Build(description)

	data, err := s.encoder.Encode(doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode workbook: %w", err)
	}

	if provider == "" {
		provider = DefaultProvider
	}

	now := s.now().UTC()
	filename := fmt.Sprintf("spreadsheet_%s.xlsx", now.Format("20060102_150405"))

	record := &Record{
		ID:          s.newID(),
		Description: description,
		Provider:    provider,
		Filename:    filename,
		SizeBytes:   int64(len(data)),
		CreatedAt:   now.Format(time.RFC3339),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Append(storeCtx, record); err != nil {
		s.logger.Warn("Record store unavailable, continuing without persistence",
			zap.String("record_id", record.ID),
			zap.Error(err))
	}

	return data, filename, nil
}

// ListGenerations returns up to limit records, newest first. A non-positive
// or oversized limit falls back to DefaultListLimit. Store unavailability
// degrades to an empty result rather than an error.
func (s *Service) ListGenerations(ctx context.Context, limit int) []*Record {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	records, err := s.store.ListRecent(storeCtx, limit)
	if err != nil {
		s.logger.Warn("Record store unavailable, returning empty generation history", zap.Error(err))
		return []*Record{}
	}
	if records == nil {
		records = []*Record{}
	}
	return records
}
