package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values
const (
	SetSaveApplied = "applied"
	SetSaveStale   = "stale"

	MarkerUpserted = "upserted"
	MarkerDeleted  = "deleted"
)

type Manager struct {
	// counters
	CounterRequests         *prometheus.CounterVec
	CounterSetSaves         *prometheus.CounterVec
	CounterCompletionMarker *prometheus.CounterVec
	CounterRecurringCopies  prometheus.Counter
	CounterWorkoutsCreated  prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("coaching", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("coaching", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterSetSaves := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "set_saves",
		Help:      "Set list writes by outcome",
	}, []string{"result"})
	counterCompletionMarker := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "completion_marker_syncs",
		Help:      "Workout completion marker syncs by action",
	}, []string{"action"})
	counterRecurringCopies := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recurring_copies",
		Help:      "The total number of workouts created by recurring copies",
	})
	counterWorkoutsCreated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_created",
		Help:      "The total number of workouts created directly by coaches",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:          counterRequests,
		CounterSetSaves:          counterSetSaves,
		CounterCompletionMarker:  counterCompletionMarker,
		CounterRecurringCopies:   counterRecurringCopies,
		CounterWorkoutsCreated:   counterWorkoutsCreated,
		GaugeRequests:            gaugeRequests,
		HistogramRequestDuration: histogramRequestDuration,
	}
}
