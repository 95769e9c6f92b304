package model

import "time"

// Order references exactly one customer and owns an append-only log of
// status notes keyed by its ID.
type Order struct {
	ID          string    `db:"id" json:"id"`
	OrderNumber string    `db:"order_number" json:"order_number"`
	CustomerID  string    `db:"customer_id" json:"customer_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Customer is read-only to the automation engine.
type Customer struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// OrderItem is one line item, used to render the order summary placeholder.
type OrderItem struct {
	SKU      string  `db:"sku" json:"sku"`
	Details  string  `db:"details" json:"details"`
	Quantity int     `db:"quantity" json:"quantity"`
	Price    float64 `db:"price" json:"price"`
}
