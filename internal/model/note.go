package model

import "time"

// OrderStatusNote is one entry in an order's append-only status ledger.
// The note with the greatest CreatedAt for an order defines its current
// status; notes are never mutated or deleted.
type OrderStatusNote struct {
	ID        string    `db:"id" json:"id"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Status    string    `db:"status" json:"status"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
