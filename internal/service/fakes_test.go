package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"orderflow/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRuleStorage struct {
	rules   []model.StatusRule
	listErr error
}

func (f *fakeRuleStorage) ListActiveRules(_ context.Context) ([]model.StatusRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rules, nil
}

func (f *fakeRuleStorage) Ping(_ context.Context) error { return nil }

// fakeLedger is an in-memory order store with a real append-only note log,
// so latest-status semantics behave like the Postgres implementation.
type fakeLedger struct {
	mu        sync.Mutex
	orders    map[string]model.Order
	notes     map[string][]model.OrderStatusNote
	customers map[string]model.Customer
	items     map[string][]model.OrderItem

	queryErrByStatus map[string]error
	latestErr        error
	appendErr        error

	// forceCandidates, when set for a status, overrides the candidate query
	// to simulate a ledger that moved on after the query ran.
	forceCandidates map[string][]model.Order

	noteSeq int
	clock   func() time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		orders:           map[string]model.Order{},
		notes:            map[string][]model.OrderStatusNote{},
		customers:        map[string]model.Customer{},
		items:            map[string][]model.OrderItem{},
		queryErrByStatus: map[string]error{},
		forceCandidates:  map[string][]model.Order{},
		clock:            time.Now,
	}
}

func (f *fakeLedger) addOrder(o model.Order, c model.Customer) {
	f.orders[o.ID] = o
	f.customers[c.ID] = c
}

func (f *fakeLedger) addNote(orderID, status string, createdAt time.Time) {
	f.noteSeq++
	f.notes[orderID] = append(f.notes[orderID], model.OrderStatusNote{
		ID:        fmt.Sprintf("note-%d", f.noteSeq),
		OrderID:   orderID,
		Status:    status,
		CreatedAt: createdAt,
	})
}

func (f *fakeLedger) latest(orderID string) *model.OrderStatusNote {
	notes := f.notes[orderID]
	if len(notes) == 0 {
		return nil
	}
	newest := notes[0]
	for _, n := range notes[1:] {
		if n.CreatedAt.After(newest.CreatedAt) {
			newest = n
		}
	}
	return &newest
}

func (f *fakeLedger) OrdersWithLatestStatus(_ context.Context, status string) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.queryErrByStatus[status]; err != nil {
		return nil, err
	}
	if forced, ok := f.forceCandidates[status]; ok {
		return forced, nil
	}

	var out []model.Order
	for id, o := range f.orders {
		if n := f.latest(id); n != nil && n.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLedger) LatestNote(_ context.Context, orderID string) (*model.OrderStatusNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest(orderID), nil
}

func (f *fakeLedger) AppendNote(_ context.Context, orderID, status, content string) (model.OrderStatusNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return model.OrderStatusNote{}, f.appendErr
	}
	f.noteSeq++
	n := model.OrderStatusNote{
		ID:        fmt.Sprintf("note-%d", f.noteSeq),
		OrderID:   orderID,
		Status:    status,
		Content:   content,
		CreatedAt: f.clock(),
	}
	f.notes[orderID] = append(f.notes[orderID], n)
	return n, nil
}

func (f *fakeLedger) GetCustomer(_ context.Context, customerID string) (model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[customerID]
	if !ok {
		return model.Customer{}, fmt.Errorf("customer %s not found", customerID)
	}
	return c, nil
}

func (f *fakeLedger) GetOrderItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[orderID], nil
}

func (f *fakeLedger) noteCount(orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notes[orderID])
}

type fakeAttemptStorage struct {
	mu        sync.Mutex
	attempts  []*model.SendAttempt
	recordErr error
	markErr   error
	seq       int64
}

func (f *fakeAttemptStorage) RecordAttempt(_ context.Context, attempt *model.SendAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.seq++
	attempt.ID = f.seq
	attempt.Status = model.AttemptPending
	attempt.CreatedAt = time.Now()
	attempt.UpdatedAt = attempt.CreatedAt
	stored := *attempt
	f.attempts = append(f.attempts, &stored)
	return nil
}

func (f *fakeAttemptStorage) MarkSent(_ context.Context, id int64, providerMessageID string) error {
	return f.settle(id, model.AttemptSent, providerMessageID, "")
}

func (f *fakeAttemptStorage) MarkFailed(_ context.Context, id int64, errorMessage string) error {
	return f.settle(id, model.AttemptFailed, "", errorMessage)
}

func (f *fakeAttemptStorage) settle(id int64, status, providerID, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	for _, a := range f.attempts {
		if a.ID == id && a.Status == model.AttemptPending {
			a.Status = status
			a.ProviderMessageID = providerID
			a.ErrorMessage = errMsg
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("no pending attempt %d", id)
}

func (f *fakeAttemptStorage) ListAttempts(_ context.Context, status string, _ int) ([]model.SendAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SendAttempt
	for _, a := range f.attempts {
		if status == "" || a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStorage) all() []model.SendAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.SendAttempt, 0, len(f.attempts))
	for _, a := range f.attempts {
		out = append(out, *a)
	}
	return out
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

type fakeDispatcher struct {
	mu       sync.Mutex
	sent     []sentMessage
	failFor  map[string]error
	seq      int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{failFor: map[string]error{}}
}

func (f *fakeDispatcher) Send(_ context.Context, to, subject, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[to]; err != nil {
		return "", err
	}
	f.seq++
	f.sent = append(f.sent, sentMessage{To: to, Subject: subject, Body: body})
	return fmt.Sprintf("msg-%d", f.seq), nil
}

func (f *fakeDispatcher) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []model.StatusEvent
}

func (f *fakeEventPublisher) Publish(_ context.Context, event model.StatusEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
