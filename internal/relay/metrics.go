package relay

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lockguard"

// Metrics holds the relay's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	messages        *prometheus.CounterVec
	accessAttempts  *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	sinkErrors      *prometheus.CounterVec
	subscriptions   prometheus.Gauge
	state           *prometheus.GaugeVec
	handlerDuration *prometheus.HistogramVec
}

// NewMetrics creates the relay collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Inbound lock messages by channel and result",
		}, []string{"channel", "result"}),
		accessAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "access_attempts_total",
			Help:      "Access code verifications by reason",
		}, []string{"reason"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "alerts_total",
			Help:      "Intrusion alert deliveries by channel and result",
		}, []string{"channel", "result"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "best_effort_failures_total",
			Help:      "Failed best-effort operations by name",
		}, []string{"operation"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "subscriptions",
			Help:      "Topics currently subscribed",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "state",
			Help:      "1 for the current connection state, 0 otherwise",
		}, []string{"state"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "relay",
			Name:      "handler_duration_seconds",
			Help:      "Time spent handling one inbound message",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"channel"}),
	}

	collectors := []prometheus.Collector{
		m.messages, m.accessAttempts, m.alerts, m.sinkErrors,
		m.subscriptions, m.state, m.handlerDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) message(channel, result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) accessAttempt(reason string) {
	if m == nil {
		return
	}
	m.accessAttempts.WithLabelValues(reason).Inc()
}

func (m *Metrics) alert(channel, result string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) bestEffortFailure(operation string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) setSubscriptions(n int) {
	if m == nil {
		return
	}
	m.subscriptions.Set(float64(n))
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	for _, known := range []State{StateDisconnected, StateConnecting, StateConnected, StateDegraded} {
		v := 0.0
		if known == s {
			v = 1
		}
		m.state.WithLabelValues(string(known)).Set(v)
	}
}

func (m *Metrics) observeHandler(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.handlerDuration.WithLabelValues(channel).Observe(seconds)
}
