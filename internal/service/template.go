package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"orderflow/internal/model"
)

const (
	customerNameFallback = "Valued Customer"
	noItemsFallback      = "No items found"

	dateFormat = "January 2, 2006"
	timeFormat = "3:04 PM"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// templateRenderer substitutes the closed set of {{ token }} placeholders
// recognized in rule templates. The substitution map is built once per
// notification set; unrecognized tokens are left untouched.
type templateRenderer struct {
	values map[string]string
}

func newTemplateRenderer(order model.Order, customer model.Customer, note model.OrderStatusNote, items []model.OrderItem, now time.Time, loc *time.Location) *templateRenderer {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	orderNumber := order.OrderNumber
	if orderNumber == "" {
		orderNumber = order.ID
	}
	customerName := customer.Name
	if customerName == "" {
		customerName = customerNameFallback
	}

	return &templateRenderer{values: map[string]string{
		"order_number":   orderNumber,
		"customer_name":  customerName,
		"customer_email": customer.Email,
		"status":         note.Status,
		"note":           note.Content,
		"date":           now.Format(dateFormat),
		"time":           now.Format(timeFormat),
		"order_summary":  orderSummary(items),
	}}
}

func (r *templateRenderer) Render(text string) string {
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		token := tokenPattern.FindStringSubmatch(match)[1]
		if v, ok := r.values[token]; ok {
			return v
		}
		return match
	})
}

func orderSummary(items []model.OrderItem) string {
	if len(items) == 0 {
		return noItemsFallback
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it.Details != "" {
			lines = append(lines, fmt.Sprintf("%s (%s) - Qty: %d - $%.2f", it.SKU, it.Details, it.Quantity, it.Price))
		} else {
			lines = append(lines, fmt.Sprintf("%s - Qty: %d - $%.2f", it.SKU, it.Quantity, it.Price))
		}
	}
	return strings.Join(lines, "\n")
}
