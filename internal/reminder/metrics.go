package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "appointment_reminder"

// Metrics holds the sweep counters. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	messages     *prometheus.CounterVec
	appointments *prometheus.CounterVec
	sweeps       *prometheus.CounterVec
}

// NewMetrics registers the sweep counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_total",
			Help:      "Reminder messages handed to the provider, by result (sent, failed).",
		}, []string{"result"}),
		appointments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "appointments_total",
			Help:      "Appointments processed, by outcome (handled, deferred, unreadable).",
		}, []string{"outcome"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweeps_total",
			Help:      "Completed reminder sweeps, by result (ok, error).",
		}, []string{"result"}),
	}

	m.Registry.MustRegister(m.messages, m.appointments, m.sweeps)

	return m
}

func (m *Metrics) message(ok bool) {
	if m == nil {
		return
	}

	if ok {
		m.messages.WithLabelValues("sent").Inc()
		return
	}

	m.messages.WithLabelValues("failed").Inc()
}

func (m *Metrics) appointment(outcome string) {
	if m == nil {
		return
	}

	m.appointments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) sweep(err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.sweeps.WithLabelValues("error").Inc()
		return
	}

	m.sweeps.WithLabelValues("ok").Inc()
}
