package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec

	// Notifications
	NotificationsCreated    *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	NotificationsFailed     *prometheus.CounterVec

	// Relationship engine
	RelationshipTransitions *prometheus.CounterVec

	// Jobs
	JobResults *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campusnet",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route", "status"},
		),
		NotificationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Subsystem: "notifications",
				Name:      "created_total",
				Help:      "Notification records stored, by type.",
			},
			[]string{"type"},
		),
		NotificationsSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Subsystem: "notifications",
				Name:      "suppressed_total",
				Help:      "Notifications skipped because sender and recipient are the same user.",
			},
			[]string{"type"},
		),
		NotificationsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Subsystem: "notifications",
				Name:      "failed_total",
				Help:      "Notification writes that failed, by type.",
			},
			[]string{"type"},
		),
		RelationshipTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Subsystem: "relationships",
				Name:      "transitions_total",
				Help:      "Follow graph transitions by outcome.",
			},
			[]string{"outcome"}, // requested|unfollowed|accepted|rejected|cancelled
		),
		JobResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusnet",
				Subsystem: "jobs",
				Name:      "results_total",
				Help:      "Scheduled job outcomes by job and result.",
			},
			[]string{"job", "result"}, // result=done|failed
		),
	}
	reg.MustRegister(
		m.RequestsTotal, m.RequestsDuration,
		m.NotificationsCreated, m.NotificationsSuppressed, m.NotificationsFailed,
		m.RelationshipTransitions, m.JobResults,
	)
	return m
}

// NewNoop returns metrics bound to a private registry, for tests and tools
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			// route template is only known after routing
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			code := strconv.Itoa(status)
			m.RequestsTotal.WithLabelValues(c.Request().Method, route, code).Inc()
			m.RequestsDuration.WithLabelValues(c.Request().Method, route, code).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
