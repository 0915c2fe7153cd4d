package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dastarkhan",
			Name:      "store_status_transitions_total",
			Help:      "Count of store status transitions by origin.",
		},
		[]string{"origin"},
	)

	overrideActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dastarkhan",
			Name:      "override_actions_total",
			Help:      "Count of merchant override actions by kind.",
		},
		[]string{"action"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dastarkhan",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	logAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dastarkhan",
			Name:      "status_log_append_failures_total",
			Help:      "Count of best-effort status log writes that failed.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(statusTransitions, overrideActions, httpRequests, logAppendFailures)
	})
}

func IncTransition(origin string) {
	statusTransitions.WithLabelValues(origin).Inc()
}

func IncOverrideAction(action string) {
	overrideActions.WithLabelValues(action).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncLogAppendFailure() {
	logAppendFailures.Inc()
}
