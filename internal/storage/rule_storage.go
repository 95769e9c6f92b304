package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"orderflow/internal/model"
)

type PostgresRuleStorage struct {
	db *pgxpool.Pool
}

func NewPostgresRuleStorage(pool *pgxpool.Pool) RuleStorage {
	return &PostgresRuleStorage{db: pool}
}

func (ps *PostgresRuleStorage) Ping(ctx context.Context) error {
	return ps.db.Ping(ctx)
}

func (ps *PostgresRuleStorage) ListActiveRules(ctx context.Context) ([]model.StatusRule, error) {
	const query = `
		SELECT id, trigger_status, target_status, wait_business_days,
		       COALESCE(description, ''),
		       COALESCE(customer_email_subject, ''),
		       COALESCE(customer_email_body, ''),
		       COALESCE(internal_recipient, ''),
		       COALESCE(additional_recipients, '{}'),
		       is_active, created_at
		FROM status_rules
		WHERE is_active = true
		ORDER BY created_at
	`

	rows, err := ps.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active rules failed: %w", err)
	}
	defer rows.Close()

	var rules []model.StatusRule
	for rows.Next() {
		var r model.StatusRule
		if err := rows.Scan(
			&r.ID, &r.TriggerStatus, &r.TargetStatus, &r.WaitBusinessDays,
			&r.Description, &r.CustomerEmailSubject, &r.CustomerEmailBody,
			&r.InternalRecipient, &r.AdditionalRecipients,
			&r.IsActive, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rule failed: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rule row iteration failed: %w", err)
	}
	return rules, nil
}
