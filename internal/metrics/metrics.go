package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderflow_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// AutomationPasses counts pass outcomes (ok, error, skipped).
	AutomationPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_automation_passes_total",
			Help: "Number of automation passes by outcome",
		},
		[]string{"outcome"},
	)

	// Transitions counts automated status transitions by target status.
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_status_transitions_total",
			Help: "Number of automated status transitions",
		},
		[]string{"target_status"},
	)

	// Notifications counts dispatch outcomes by email type and status.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderflow_notifications_total",
			Help: "Number of notification dispatches by type and outcome",
		},
		[]string{"email_type", "status"},
	)

	// PassDuration tracks how long a full automation pass takes.
	PassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderflow_automation_pass_duration_seconds",
			Help:    "Duration of automation passes",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequests, RequestDuration, AutomationPasses, Transitions, Notifications, PassDuration)
}
