package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appErr "orderflow/internal/errors"
	"orderflow/internal/model"
)

type PostgresOrderStorage struct {
	db *pgxpool.Pool
}

func NewPostgresOrderStorage(pool *pgxpool.Pool) OrderStorage {
	return &PostgresOrderStorage{db: pool}
}

// OrdersWithLatestStatus resolves each order's newest note first and only
// then filters on the status, so an order that carried the status earlier
// in its history but has since moved on is never returned.
func (ps *PostgresOrderStorage) OrdersWithLatestStatus(ctx context.Context, status string) ([]model.Order, error) {
	const query = `
		SELECT o.id, o.order_number, o.customer_id, o.created_at
		FROM orders o
		JOIN (
			SELECT DISTINCT ON (order_id) order_id, status
			FROM order_status_notes
			ORDER BY order_id, created_at DESC
		) latest ON latest.order_id = o.id
		WHERE latest.status = $1
		ORDER BY o.created_at
	`

	rows, err := ps.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("query orders with latest status failed: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order failed: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order row iteration failed: %w", err)
	}
	return orders, nil
}

func (ps *PostgresOrderStorage) LatestNote(ctx context.Context, orderID string) (*model.OrderStatusNote, error) {
	const query = `
		SELECT id, order_id, status, COALESCE(content, ''), created_at
		FROM order_status_notes
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var n model.OrderStatusNote
	err := ps.db.QueryRow(ctx, query, orderID).Scan(
		&n.ID, &n.OrderID, &n.Status, &n.Content, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest note lookup failed: %w", err)
	}
	return &n, nil
}

func (ps *PostgresOrderStorage) AppendNote(ctx context.Context, orderID, status, content string) (model.OrderStatusNote, error) {
	const query = `
		INSERT INTO order_status_notes (order_id, status, content)
		VALUES ($1, $2, $3)
		RETURNING id, order_id, status, COALESCE(content, ''), created_at
	`

	var n model.OrderStatusNote
	err := ps.db.QueryRow(ctx, query, orderID, status, content).Scan(
		&n.ID, &n.OrderID, &n.Status, &n.Content, &n.CreatedAt,
	)
	if err != nil {
		return model.OrderStatusNote{}, fmt.Errorf("append note failed: %w", err)
	}
	return n, nil
}

func (ps *PostgresOrderStorage) GetCustomer(ctx context.Context, customerID string) (model.Customer, error) {
	const query = `
		SELECT id, COALESCE(name, ''), COALESCE(email, '')
		FROM customers
		WHERE id = $1
	`

	var c model.Customer
	err := ps.db.QueryRow(ctx, query, customerID).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Customer{}, fmt.Errorf("customer %s: %w", customerID, appErr.ErrNotFound)
		}
		return model.Customer{}, fmt.Errorf("customer lookup failed: %w", err)
	}
	return c, nil
}

func (ps *PostgresOrderStorage) GetOrderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	const query = `
		SELECT sku, COALESCE(details, ''), quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY sku
	`

	rows, err := ps.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items failed: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.SKU, &it.Details, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item failed: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order item row iteration failed: %w", err)
	}
	return items, nil
}
