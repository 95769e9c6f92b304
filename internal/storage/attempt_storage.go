package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orderflow/internal/model"
)

type postgresAttemptStorage struct {
	db *sqlx.DB
}

// NewPostgresAttemptStorage persists send attempts through sqlx on top of
// the shared pgx pool.
func NewPostgresAttemptStorage(db *sqlx.DB) AttemptStorage {
	return &postgresAttemptStorage{db: db}
}

// RecordAttempt inserts a new attempt with status pending and fills in the
// generated ID and timestamps.
func (s *postgresAttemptStorage) RecordAttempt(ctx context.Context, attempt *model.SendAttempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}
	attempt.Status = model.AttemptPending

	const query = `
		INSERT INTO send_attempts
			(order_id, status_rule_id, email_type, recipient, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	row := s.db.QueryRowxContext(ctx, query,
		attempt.OrderID, attempt.StatusRuleID, attempt.EmailType,
		attempt.Recipient, attempt.Subject, attempt.Message, attempt.Status,
	)
	if err := row.Scan(&attempt.ID, &attempt.CreatedAt, &attempt.UpdatedAt); err != nil {
		return fmt.Errorf("insert send attempt failed: %w", err)
	}
	return nil
}

func (s *postgresAttemptStorage) MarkSent(ctx context.Context, id int64, providerMessageID string) error {
	const query = `
		UPDATE send_attempts
		SET status = $1, provider_message_id = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return s.exec(ctx, query, model.AttemptSent, providerMessageID, time.Now(), id, model.AttemptPending)
}

func (s *postgresAttemptStorage) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	const query = `
		UPDATE send_attempts
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	return s.exec(ctx, query, model.AttemptFailed, errorMessage, time.Now(), id, model.AttemptPending)
}

func (s *postgresAttemptStorage) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update send attempt failed: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.New("no pending attempt row was updated, check the ID")
	}
	return nil
}

func (s *postgresAttemptStorage) ListAttempts(ctx context.Context, status string, limit int) ([]model.SendAttempt, error) {
	if limit <= 0 {
		limit = 100
	}

	var attempts []model.SendAttempt
	const base = `
		SELECT id, order_id, status_rule_id, email_type, recipient, subject, message,
		       status, COALESCE(error_message, '') AS error_message,
		       COALESCE(provider_message_id, '') AS provider_message_id,
		       created_at, updated_at
		FROM send_attempts
	`
	if status == "" {
		err := s.db.SelectContext(ctx, &attempts, base+` ORDER BY created_at DESC LIMIT $1`, limit)
		return attempts, err
	}
	err := s.db.SelectContext(ctx, &attempts, base+` WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	return attempts, err
}
