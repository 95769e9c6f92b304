package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"orderflow/internal/config"
	"orderflow/internal/metrics"
	"orderflow/internal/model"
	"orderflow/internal/storage"
)

// EventPublisher publishes a status-change event after a transition.
// Publishing is best effort; a publish failure never fails the order.
type EventPublisher interface {
	Publish(ctx context.Context, event model.StatusEvent) error
}

// PassSummary aggregates the outcome of one automation pass.
type PassSummary struct {
	RunID     string
	Rules     int
	Processed int
	Skipped   int
	Failed    int
}

// AutomationEngine advances orders through configured status transitions.
// One call to RunAutomation is one pass: it evaluates every active rule,
// transitions the orders that are due and fans out notifications. Re-running
// immediately after a successful pass is a no-op because each transitioned
// order's latest note now carries the target status.
type AutomationEngine struct {
	rules    storage.RuleStorage
	orders   storage.OrderStorage
	notifier *Notifier
	events   EventPublisher
	cfg      config.AutomationConfig
	loc      *time.Location
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAutomationEngine wires the engine. events may be nil when no Kafka
// producer is configured.
func NewAutomationEngine(
	rules storage.RuleStorage,
	orders storage.OrderStorage,
	notifier *Notifier,
	events EventPublisher,
	cfg config.AutomationConfig,
	loc *time.Location,
	logger *slog.Logger,
) *AutomationEngine {
	if cfg.RuleConcurrency <= 0 {
		cfg.RuleConcurrency = 1
	}
	if cfg.OrderConcurrency <= 0 {
		cfg.OrderConcurrency = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AutomationEngine{
		rules:    rules,
		orders:   orders,
		notifier: notifier,
		events:   events,
		cfg:      cfg,
		loc:      loc,
		logger:   logger.With("component", "automation"),
		tracer:   otel.Tracer("automation-engine"),
		now:      time.Now,
	}
}

// Run satisfies the scheduler's Runner contract.
func (e *AutomationEngine) Run(ctx context.Context) error {
	_, err := e.RunAutomation(ctx)
	return err
}

type passCounters struct {
	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// RunAutomation executes one pass over all active rules. Only pass-level
// failures (the active-rule query itself) are returned; rule and order
// failures are logged, counted and isolated.
func (e *AutomationEngine) RunAutomation(ctx context.Context) (PassSummary, error) {
	runID := uuid.NewString()
	log := e.logger.With(slog.String("run_id", runID))
	start := e.now()

	ctx, span := e.tracer.Start(ctx, "RunAutomation")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", runID))

	summary := PassSummary{RunID: runID}

	rules, err := e.rules.ListActiveRules(ctx)
	if err != nil {
		log.Error("failed to load active rules", slog.Any("error", err))
		metrics.AutomationPasses.WithLabelValues("error").Inc()
		return summary, fmt.Errorf("load active rules: %w", err)
	}
	if len(rules) == 0 {
		log.Info("no active rules, nothing to do")
		metrics.AutomationPasses.WithLabelValues("ok").Inc()
		return summary, nil
	}
	summary.Rules = len(rules)
	span.SetAttributes(attribute.Int("rules.count", len(rules)))
	log.Info("automation pass started", slog.Int("rules", len(rules)))

	var counters passCounters
	eg := &errgroup.Group{}
	eg.SetLimit(e.cfg.RuleConcurrency)
	for _, rule := range rules {
		rule := rule
		eg.Go(func() error {
			e.processRule(ctx, log, rule, &counters)
			return nil
		})
	}
	eg.Wait()

	summary.Processed = int(counters.processed.Load())
	summary.Skipped = int(counters.skipped.Load())
	summary.Failed = int(counters.failed.Load())

	duration := e.now().Sub(start)
	metrics.AutomationPasses.WithLabelValues("ok").Inc()
	metrics.PassDuration.Observe(duration.Seconds())
	log.Info("automation pass finished",
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", duration))
	return summary, nil
}

// processRule finds candidate orders for one rule and processes them in
// bounded chunks. A candidate-query failure abandons the rule for this pass
// without touching the others.
func (e *AutomationEngine) processRule(ctx context.Context, log *slog.Logger, rule model.StatusRule, counters *passCounters) {
	ctx, span := e.tracer.Start(ctx, "processRule")
	defer span.End()
	span.SetAttributes(
		attribute.String("rule.id", rule.ID),
		attribute.String("rule.trigger", rule.TriggerStatus),
		attribute.String("rule.target", rule.TargetStatus),
	)
	log = log.With(slog.String("rule_id", rule.ID), slog.String("trigger", rule.TriggerStatus))

	orders, err := e.orders.OrdersWithLatestStatus(ctx, rule.TriggerStatus)
	if err != nil {
		log.Error("candidate query failed, abandoning rule for this pass", slog.Any("error", err))
		counters.failed.Add(1)
		return
	}
	if len(orders) == 0 {
		return
	}
	log.Info("candidates found", slog.Int("count", len(orders)))

	// Process orders in chunks so a large candidate set cannot overwhelm
	// the store or the mail provider. ChunkDelay spaces the chunks out.
	for start := 0; start < len(orders); start += e.cfg.OrderConcurrency {
		end := start + e.cfg.OrderConcurrency
		if end > len(orders) {
			end = len(orders)
		}

		eg := &errgroup.Group{}
		for _, order := range orders[start:end] {
			order := order
			eg.Go(func() error {
				e.processOrder(ctx, log, rule, order, counters)
				return nil
			})
		}
		eg.Wait()

		if e.cfg.ChunkDelay > 0 && end < len(orders) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.cfg.ChunkDelay):
			}
		}
	}
}

// processOrder applies the eligibility gates and, when due, performs the
// transition and the notification fan-out. Any failure abandons only this
// order.
func (e *AutomationEngine) processOrder(ctx context.Context, log *slog.Logger, rule model.StatusRule, order model.Order, counters *passCounters) {
	log = log.With(slog.String("order_id", order.ID))

	latest, err := e.orders.LatestNote(ctx, order.ID)
	if err != nil {
		log.Error("latest note lookup failed", slog.Any("error", err))
		counters.failed.Add(1)
		return
	}
	if latest == nil || latest.Status != rule.TriggerStatus {
		// The candidate query is latest-only, but the ledger may have moved
		// on between the query and now. Verify before transitioning.
		counters.skipped.Add(1)
		return
	}

	if rule.WaitBusinessDays > 0 {
		elapsed := BusinessDaysBetween(latest.CreatedAt, e.now(), e.loc)
		if elapsed < rule.WaitBusinessDays {
			log.Debug("wait period not elapsed",
				slog.Int("elapsed", elapsed),
				slog.Int("required", rule.WaitBusinessDays))
			counters.skipped.Add(1)
			return
		}
	}

	// Guards rules whose trigger equals their target against re-processing.
	if latest.Status == rule.TargetStatus {
		counters.skipped.Add(1)
		return
	}

	note, err := e.orders.AppendNote(ctx, order.ID, rule.TargetStatus, rule.Description)
	if err != nil {
		// No notifications without a recorded transition.
		log.Error("failed to append status note", slog.Any("error", err))
		counters.failed.Add(1)
		return
	}
	metrics.Transitions.WithLabelValues(rule.TargetStatus).Inc()
	log.Info("status transition applied",
		slog.String("old_status", latest.Status),
		slog.String("new_status", note.Status))

	e.publishEvent(ctx, log, rule, order, latest.Status, note)

	customer, err := e.orders.GetCustomer(ctx, order.CustomerID)
	if err != nil {
		log.Warn("customer lookup failed, notifications fall back to defaults", slog.Any("error", err))
	}
	items, err := e.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		log.Warn("order items lookup failed", slog.Any("error", err))
		items = nil
	}

	e.notifier.Notify(ctx, order, customer, items, rule, latest.Status, note)
	counters.processed.Add(1)
}

func (e *AutomationEngine) publishEvent(ctx context.Context, log *slog.Logger, rule model.StatusRule, order model.Order, oldStatus string, note model.OrderStatusNote) {
	if e.events == nil {
		return
	}
	event := model.StatusEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OldStatus:   oldStatus,
		NewStatus:   note.Status,
		RuleID:      rule.ID,
		Timestamp:   note.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := e.events.Publish(ctx, event); err != nil {
		log.Warn("failed to publish status event", slog.Any("error", err))
	}
}
