package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sheetgen/server/internal/generation"
)

// GenerationRepository persists generation records in SQLite. It is
// append-only: records are never updated or deleted.
type GenerationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGenerationRepository creates a new generation repository.
func NewGenerationRepository(db *sql.DB, logger *zap.Logger) *GenerationRepository {
	return &GenerationRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a generation record. Errors indicate store unavailability,
// never record validity; callers are expected to treat them as degraded mode.
func (r *GenerationRepository) Append(ctx context.Context, record *generation.Record) error {
	query := `
		INSERT INTO generations (
			id, description, provider, filename, size_bytes, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Description,
		record.Provider,
		record.Filename,
		record.SizeBytes,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append generation record",
			zap.String("id", record.ID),
			zap.Error(err))
		return fmt.Errorf("failed to append generation record: %w", err)
	}

	return nil
}

// ListRecent returns up to limit records ordered newest first. Ties in
// created_at fall back to insertion order via the rowid.
func (r *GenerationRepository) ListRecent(ctx context.Context, limit int) ([]*generation.Record, error) {
	query := `
		SELECT id, description, provider, filename, size_bytes, created_at
		FROM generations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list generation records", zap.Error(err))
		return nil, fmt.Errorf("failed to list generation records: %w", err)
	}
	defer rows.Close()

	var records []*generation.Record
	for rows.Next() {
		var rec generation.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Description,
			&rec.Provider,
			&rec.Filename,
			&rec.SizeBytes,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read generation records: %w", err)
	}

	return records, nil
}
