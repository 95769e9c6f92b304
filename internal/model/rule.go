package model

import "time"

// StatusRule is a configured status transition. When an order's latest status
// note matches TriggerStatus and the wait period has elapsed, the engine
// appends a note with TargetStatus and fans out the configured notifications.
type StatusRule struct {
	ID                   string    `db:"id" json:"id"`
	TriggerStatus        string    `db:"trigger_status" json:"trigger_status"`
	TargetStatus         string    `db:"target_status" json:"target_status"`
	WaitBusinessDays     int       `db:"wait_business_days" json:"wait_business_days"`
	Description          string    `db:"description" json:"description"`
	CustomerEmailSubject string    `db:"customer_email_subject" json:"customer_email_subject"`
	CustomerEmailBody    string    `db:"customer_email_body" json:"customer_email_body"`
	InternalRecipient    string    `db:"internal_recipient" json:"internal_recipient"`
	AdditionalRecipients []string  `db:"-" json:"additional_recipients"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// HasCustomerTemplate reports whether the rule carries a complete customer
// email template. Both subject and body are required for a customer-facing send.
func (r StatusRule) HasCustomerTemplate() bool {
	return r.CustomerEmailSubject != "" && r.CustomerEmailBody != ""
}
