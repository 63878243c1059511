package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// StatusCheck records a client ping against the service.
type StatusCheck struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	Timestamp  string `json:"timestamp"` // ISO-8601, UTC
}

// StatusRepository persists status checks in SQLite.
type StatusRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStatusRepository creates a new status-check repository.
func NewStatusRepository(db *sql.DB, logger *zap.Logger) *StatusRepository {
	return &StatusRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a status check.
func (r *StatusRepository) Create(ctx context.Context, check *StatusCheck) error {
	query := `
		INSERT INTO status_checks (id, client_name, timestamp)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, check.ID, check.ClientName, check.Timestamp)
	if err != nil {
		r.logger.Error("Failed to create status check", zap.Error(err))
		return fmt.Errorf("failed to create status check: %w", err)
	}

	return nil
}

// List returns up to limit status checks in insertion order.
func (r *StatusRepository) List(ctx context.Context, limit int) ([]*StatusCheck, error) {
	query := `
		SELECT id, client_name, timestamp
		FROM status_checks
		ORDER BY rowid
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list status checks", zap.Error(err))
		return nil, fmt.Errorf("failed to list status checks: %w", err)
	}
	defer rows.Close()

	var checks []*StatusCheck
	for rows.Next() {
		var check StatusCheck
		if err := rows.Scan(&check.ID, &check.ClientName, &check.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status check: %w", err)
		}
		checks = append(checks, &check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status checks: %w", err)
	}

	return checks, nil
}
