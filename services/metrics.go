package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported at /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPDuration   *prometheus.HistogramVec
	Toggles        *prometheus.CounterVec
	ChatConns      prometheus.Gauge
	ChatMessages   prometheus.Counter
	ChatRejections *prometheus.CounterVec
	ChatDropped    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gamenest",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		Toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenest",
			Name:      "relation_toggles_total",
			Help:      "Relation toggles by kind and resulting state.",
		}, []string{"kind", "state"}),
		ChatConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gamenest",
			Name:      "chat_connections",
			Help:      "Currently joined chat connections.",
		}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamenest",
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted and broadcast.",
		}),
		ChatRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gamenest",
			Name:      "chat_rejections_total",
			Help:      "Chat connections rejected before joining, by reason.",
		}, []string{"reason"}),
		ChatDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gamenest",
			Name:      "chat_dropped_deliveries_total",
			Help:      "Broadcast deliveries dropped because a connection queue was full.",
		}),
	}
	reg.MustRegister(m.HTTPDuration, m.Toggles, m.ChatConns, m.ChatMessages, m.ChatRejections, m.ChatDropped)
	return m
}

func (m *Metrics) observeToggle(kind RelationKind, active bool) {
	if m == nil {
		return
	}
	state := "removed"
	if active {
		state = "added"
	}
	m.Toggles.WithLabelValues(kind.Name, state).Inc()
}

func (m *Metrics) chatJoined() {
	if m != nil {
		m.ChatConns.Inc()
	}
}

func (m *Metrics) chatLeft() {
	if m != nil {
		m.ChatConns.Dec()
	}
}

func (m *Metrics) chatMessage() {
	if m != nil {
		m.ChatMessages.Inc()
	}
}

func (m *Metrics) chatDropped() {
	if m != nil {
		m.ChatDropped.Inc()
	}
}

// ChatRejected counts a connection refused by the gate.
func (m *Metrics) ChatRejected(reason string) {
	if m != nil {
		m.ChatRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveHTTP records one request's latency.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
	}
}
