package model

// StatusEvent is published to Kafka after every automated transition so
// downstream consumers (sync pipeline, dashboards) see status changes.
type StatusEvent struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	RuleID      string `json:"rule_id"`
	Timestamp   string `json:"timestamp"`
}
