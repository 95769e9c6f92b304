package storage

import (
	"context"

	"orderflow/internal/model"
)

// RuleStorage reads status-transition rules. Rules are edited externally
// and are read-only to the engine.
type RuleStorage interface {
	ListActiveRules(ctx context.Context) ([]model.StatusRule, error)
	Ping(ctx context.Context) error
}

// OrderStorage reads orders and their status ledger and appends new notes.
// Notes are never updated or deleted.
type OrderStorage interface {
	// OrdersWithLatestStatus returns orders whose most recent status note
	// carries the given status. Orders that merely had the status at some
	// point in their history are not returned.
	OrdersWithLatestStatus(ctx context.Context, status string) ([]model.Order, error)
	// LatestNote returns the newest status note for the order, or nil when
	// the order has no notes yet.
	LatestNote(ctx context.Context, orderID string) (*model.OrderStatusNote, error)
	AppendNote(ctx context.Context, orderID, status, content string) (model.OrderStatusNote, error)
	GetCustomer(ctx context.Context, customerID string) (model.Customer, error)
	GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
}

// AttemptStorage persists notification send attempts. Rows are created
// pending and updated exactly once to a terminal state.
type AttemptStorage interface {
	RecordAttempt(ctx context.Context, attempt *model.SendAttempt) error
	MarkSent(ctx context.Context, id int64, providerMessageID string) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	ListAttempts(ctx context.Context, status string, limit int) ([]model.SendAttempt, error)
}
