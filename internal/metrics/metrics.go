// Package metrics exposes prometheus collectors for the chat server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wirechat"

// Delivery results.
const (
	DeliveryOK           = "ok"
	DeliveryDisconnected = "disconnected"
	DeliveryError        = "error"
	DeliveryDropped      = "dropped"
)

// Metrics holds the server collectors.
type Metrics struct {
	sessionsActive    prometheus.Gauge
	clientsRegistered prometheus.Gauge
	channelMembers    *prometheus.GaugeVec
	deliveries        *prometheus.CounterVec
	broadcasts        prometheus.Counter
	commands          *prometheus.CounterVec
	workerRestarts    *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open client connections.",
		}),
		clientsRegistered: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients_registered",
			Help:      "Clients currently held by the session registry.",
		}),
		channelMembers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_members",
			Help:      "Members per channel.",
		}, []string{"channel"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Outbound lines handled by the postman, by result.",
		}, []string{"result"}),
		broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcasts_total",
			Help:      "Broadcast events fanned out by the router.",
		}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound protocol commands, by command word.",
		}, []string{"command"}),
		workerRestarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Worker loops restarted after a panic.",
		}, []string{"worker"}),
	}
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessionsActive.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessionsActive.Dec()
	}
}

func (m *Metrics) SetRegistered(n int) {
	if m != nil {
		m.clientsRegistered.Set(float64(n))
	}
}

func (m *Metrics) SetChannelMembers(channel string, n int) {
	if m != nil {
		m.channelMembers.WithLabelValues(channel).Set(float64(n))
	}
}

func (m *Metrics) Delivery(result string) {
	if m != nil {
		m.deliveries.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Broadcast() {
	if m != nil {
		m.broadcasts.Inc()
	}
}

func (m *Metrics) Command(command string) {
	if m != nil {
		m.commands.WithLabelValues(command).Inc()
	}
}

func (m *Metrics) WorkerRestarted(worker string) {
	if m != nil {
		m.workerRestarts.WithLabelValues(worker).Inc()
	}
}
