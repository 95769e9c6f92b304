package model

import "time"

// SendAttempt statuses. An attempt starts pending and moves exactly once
// to sent or failed.
const (
	AttemptPending = "pending"
	AttemptSent    = "sent"
	AttemptFailed  = "failed"
)

// Email types recorded on send attempts.
const (
	EmailTypeCustomer   = "customer"
	EmailTypePrivate    = "private"
	EmailTypeAdditional = "additional"
	// EmailTypePrivateCopy exists in historical rows written before private
	// routing and direct customer routing became mutually exclusive. The
	// engine no longer produces it.
	EmailTypePrivateCopy = "private_copy"
)

// SendAttempt is the persisted record of one notification dispatch.
type SendAttempt struct {
	ID                int64     `db:"id" json:"id"`
	OrderID           string    `db:"order_id" json:"order_id"`
	StatusRuleID      string    `db:"status_rule_id" json:"status_rule_id"`
	EmailType         string    `db:"email_type" json:"email_type"`
	Recipient         string    `db:"recipient" json:"recipient"`
	Subject           string    `db:"subject" json:"subject"`
	Message           string    `db:"message" json:"message"`
	Status            string    `db:"status" json:"status"`
	ErrorMessage      string    `db:"error_message" json:"error_message,omitempty"`
	ProviderMessageID string    `db:"provider_message_id" json:"provider_message_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
