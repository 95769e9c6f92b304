package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/metrics"
	"orderflow/internal/model"
	"orderflow/internal/storage"
)

// Dispatcher sends one message to one address and returns the
// provider-assigned message identifier.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// Notifier builds the notification set for a completed status transition,
// dispatches each message and records every attempt.
type Notifier struct {
	attempts   storage.AttemptStorage
	dispatcher Dispatcher
	loc        *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

func NewNotifier(attempts storage.AttemptStorage, dispatcher Dispatcher, loc *time.Location, logger *slog.Logger) *Notifier {
	return &Notifier{
		attempts:   attempts,
		dispatcher: dispatcher,
		loc:        loc,
		logger:     logger.With("component", "notifier"),
		now:        time.Now,
	}
}

type notification struct {
	emailType string
	recipient string
	subject   string
	body      string
}

// Notify fans out the notifications configured on the rule for an order that
// just transitioned from oldStatus to the status on note. Dispatch failures
// are isolated per notification; the returned count is the number of
// messages that reached the provider.
func (n *Notifier) Notify(ctx context.Context, order model.Order, customer model.Customer, items []model.OrderItem, rule model.StatusRule, oldStatus string, note model.OrderStatusNote) int {
	requests := n.build(order, customer, items, rule, oldStatus, note)

	sent := 0
	for _, req := range requests {
		if n.dispatch(ctx, order, rule, req) {
			sent++
		}
	}
	return sent
}

// build evaluates the fan-out policy. Private routing and direct customer
// routing are mutually exclusive: when an internal recipient is configured
// the customer is not emailed, so no transition ever produces two
// customer-facing messages.
func (n *Notifier) build(order model.Order, customer model.Customer, items []model.OrderItem, rule model.StatusRule, oldStatus string, note model.OrderStatusNote) []notification {
	renderer := newTemplateRenderer(order, customer, note, items, n.now(), n.loc)

	var requests []notification

	var customerSubject, customerBody string
	if rule.HasCustomerTemplate() {
		customerSubject = renderer.Render(rule.CustomerEmailSubject)
		customerBody = renderer.Render(rule.CustomerEmailBody)
	}

	if rule.InternalRecipient != "" {
		requests = append(requests, notification{
			emailType: model.EmailTypePrivate,
			recipient: rule.InternalRecipient,
			subject:   n.internalSubject(order, oldStatus, note),
			body:      n.internalBody(order, customer, oldStatus, note),
		})
	} else if rule.HasCustomerTemplate() && customer.Email != "" {
		requests = append(requests, notification{
			emailType: model.EmailTypeCustomer,
			recipient: customer.Email,
			subject:   customerSubject,
			body:      customerBody,
		})
	}

	if rule.HasCustomerTemplate() {
		for _, addr := range rule.AdditionalRecipients {
			if addr == "" {
				continue
			}
			requests = append(requests, notification{
				emailType: model.EmailTypeAdditional,
				recipient: addr,
				subject:   customerSubject,
				body:      customerBody,
			})
		}
	}

	return requests
}

func (n *Notifier) internalSubject(order model.Order, oldStatus string, note model.OrderStatusNote) string {
	number := order.OrderNumber
	if number == "" {
		number = order.ID
	}
	return fmt.Sprintf("Order %s: %s -> %s", number, oldStatus, note.Status)
}

func (n *Notifier) internalBody(order model.Order, customer model.Customer, oldStatus string, note model.OrderStatusNote) string {
	number := order.OrderNumber
	if number == "" {
		number = order.ID
	}
	name := customer.Name
	if name == "" {
		name = customerNameFallback
	}
	ts := note.CreatedAt.In(n.loc)
	return fmt.Sprintf(
		"Order %s\nCustomer: %s <%s>\nStatus changed: %s -> %s\nAt: %s %s",
		number, name, customer.Email, oldStatus, note.Status,
		ts.Format(dateFormat), ts.Format(timeFormat),
	)
}

// dispatch records a pending attempt, calls the dispatcher and settles the
// attempt row. Attempt-log failures are logged and never block the send.
func (n *Notifier) dispatch(ctx context.Context, order model.Order, rule model.StatusRule, req notification) bool {
	attempt := &model.SendAttempt{
		OrderID:      order.ID,
		StatusRuleID: rule.ID,
		EmailType:    req.emailType,
		Recipient:    req.recipient,
		Subject:      req.subject,
		Message:      req.body,
	}
	if err := n.attempts.RecordAttempt(ctx, attempt); err != nil {
		n.logger.Error("failed to record send attempt",
			slog.String("order_id", order.ID),
			slog.String("recipient", req.recipient),
			slog.Any("error", err))
	}

	providerID, err := n.dispatcher.Send(ctx, req.recipient, req.subject, req.body)
	if err != nil {
		n.logger.Error("notification dispatch failed",
			slog.String("order_id", order.ID),
			slog.String("email_type", req.emailType),
			slog.String("recipient", req.recipient),
			slog.Any("error", err))
		metrics.Notifications.WithLabelValues(req.emailType, model.AttemptFailed).Inc()
		if attempt.ID != 0 {
			if uerr := n.attempts.MarkFailed(ctx, attempt.ID, err.Error()); uerr != nil {
				n.logger.Error("failed to mark attempt failed",
					slog.Int64("attempt_id", attempt.ID), slog.Any("error", uerr))
			}
		}
		return false
	}

	n.logger.Info("notification sent",
		slog.String("order_id", order.ID),
		slog.String("email_type", req.emailType),
		slog.String("recipient", req.recipient),
		slog.String("provider_message_id", providerID))
	metrics.Notifications.WithLabelValues(req.emailType, model.AttemptSent).Inc()
	if attempt.ID != 0 {
		if uerr := n.attempts.MarkSent(ctx, attempt.ID, providerID); uerr != nil {
			n.logger.Error("failed to mark attempt sent",
				slog.Int64("attempt_id", attempt.ID), slog.Any("error", uerr))
		}
	}
	return true
}
