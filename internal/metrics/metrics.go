// Package metrics holds the Prometheus collectors for the marketplace.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	InquiriesCreated   prometheus.Counter
	InquiryResponses   *prometheus.CounterVec
	TransactionsOpened prometheus.Counter
	PhaseAdvances      *prometheus.CounterVec
	TasksCompleted     prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		InquiriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inquiries_created_total",
			Help:      "Inquiries submitted by buyers.",
		}),
		InquiryResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inquiry_responses_total",
			Help:      "Inquiry responses by decision.",
		}, []string{"decision"}),
		TransactionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_opened_total",
			Help:      "Transactions opened from accepted inquiries.",
		}),
		PhaseAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_phase_advances_total",
			Help:      "Transaction phase advances by target phase.",
		}, []string{"phase"}),
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_tasks_completed_total",
			Help:      "Checklist tasks marked complete.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.Registry.MustRegister(
		m.InquiriesCreated,
		m.InquiryResponses,
		m.TransactionsOpened,
		m.PhaseAdvances,
		m.TasksCompleted,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request latency labelled by the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// The recording helpers below accept a nil receiver so services can run
// without metrics wired.

func (m *Metrics) InquiryCreated() {
	if m != nil {
		m.InquiriesCreated.Inc()
	}
}

func (m *Metrics) InquiryResponded(decision string) {
	if m != nil {
		m.InquiryResponses.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) TransactionOpened() {
	if m != nil {
		m.TransactionsOpened.Inc()
	}
}

func (m *Metrics) PhaseAdvanced(phase string) {
	if m != nil {
		m.PhaseAdvances.WithLabelValues(phase).Inc()
	}
}

func (m *Metrics) TaskCompleted() {
	if m != nil {
		m.TasksCompleted.Inc()
	}
}
