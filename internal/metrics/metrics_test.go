package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionOpened()
	m.Delivery(DeliveryOK)
	m.WorkerRestarted("postman")
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.Delivery(DeliveryOK)
	m.Delivery(DeliveryOK)
	m.Delivery(DeliveryDisconnected)
	m.SetChannelMembers("#rust", 3)

	require.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))
	require.Equal(t, 2.0, testutil.ToFloat64(m.deliveries.WithLabelValues(DeliveryOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues(DeliveryDisconnected)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.channelMembers.WithLabelValues("#rust")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
