package mqttpub

import (
	"time"
)

// MetricLabels represents key-value pairs for metric labels.
type MetricLabels map[string]string

// Metrics defines the interface for collecting metrics.
type Metrics interface {
	// Counter returns a counter metric.
	Counter(name string, labels MetricLabels) Counter

	// Gauge returns a gauge metric.
	Gauge(name string, labels MetricLabels) Gauge

	// Histogram returns a histogram metric.
	Histogram(name string, labels MetricLabels) Histogram
}

// Counter is a monotonically increasing counter.
type Counter interface {
	Inc()
	Add(delta float64)
	Value() float64
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
	Sub(delta float64)
	Value() float64
}

// Histogram tracks the distribution of values.
type Histogram interface {
	Observe(value float64)

	// ObserveDuration records a duration in seconds.
	ObserveDuration(d time.Duration)

	Count() uint64
	Sum() float64
}

// NoOpMetrics is a no-op implementation of Metrics.
type NoOpMetrics struct{}

// Counter returns a no-op counter.
func (n *NoOpMetrics) Counter(_ string, _ MetricLabels) Counter {
	return noOpCounter{}
}

// Gauge returns a no-op gauge.
func (n *NoOpMetrics) Gauge(_ string, _ MetricLabels) Gauge {
	return noOpGauge{}
}

// Histogram returns a no-op histogram.
func (n *NoOpMetrics) Histogram(_ string, _ MetricLabels) Histogram {
	return noOpHistogram{}
}

type noOpCounter struct{}

func (noOpCounter) Inc()           {}
func (noOpCounter) Add(_ float64)  {}
func (noOpCounter) Value() float64 { return 0 }

type noOpGauge struct{}

func (noOpGauge) Set(_ float64)  {}
func (noOpGauge) Inc()           {}
func (noOpGauge) Dec()           {}
func (noOpGauge) Add(_ float64)  {}
func (noOpGauge) Sub(_ float64)  {}
func (noOpGauge) Value() float64 { return 0 }

type noOpHistogram struct{}

func (noOpHistogram) Observe(_ float64)               {}
func (noOpHistogram) ObserveDuration(_ time.Duration) {}
func (noOpHistogram) Count() uint64                   { return 0 }
func (noOpHistogram) Sum() float64                    { return 0 }

// Metric names recorded by the client.
const (
	MetricConnections         = "mqtt_client_connections"
	MetricConnectionsTotal    = "mqtt_client_connections_total"
	MetricConnectFailures     = "mqtt_client_connect_failures_total"
	MetricConnectLatency      = "mqtt_client_connect_latency_seconds"
	MetricPacketsSent         = "mqtt_client_packets_sent_total"
	MetricBytesSent           = "mqtt_client_bytes_sent_total"
	MetricMessagesPublished   = "mqtt_client_messages_published_total"
	MetricPublishLatency      = "mqtt_client_publish_latency_seconds"
	MetricInboundBytesDrained = "mqtt_client_inbound_bytes_drained_total"
)

// Metric labels.
const (
	LabelPacketType = "packet_type"
	LabelQoS        = "qos"
)

// ClientMetrics records the client's standard metrics on a Metrics backend.
type ClientMetrics struct {
	metrics Metrics
}

// NewClientMetrics creates a new ClientMetrics instance.
func NewClientMetrics(m Metrics) *ClientMetrics {
	if m == nil {
		m = &NoOpMetrics{}
	}
	return &ClientMetrics{metrics: m}
}

// ConnectionOpened records a completed handshake and its latency.
func (c *ClientMetrics) ConnectionOpened(latency time.Duration) {
	c.metrics.Gauge(MetricConnections, nil).Inc()
	c.metrics.Counter(MetricConnectionsTotal, nil).Inc()
	c.metrics.Histogram(MetricConnectLatency, nil).ObserveDuration(latency)
}

// ConnectFailed records a failed dial or handshake.
func (c *ClientMetrics) ConnectFailed() {
	c.metrics.Counter(MetricConnectFailures, nil).Inc()
}

// ConnectionClosed records a closed connection.
func (c *ClientMetrics) ConnectionClosed() {
	c.metrics.Gauge(MetricConnections, nil).Dec()
}

// PacketSent records a written packet and its size.
func (c *ClientMetrics) PacketSent(packetType PacketType, size int) {
	c.metrics.Counter(MetricPacketsSent, MetricLabels{LabelPacketType: packetType.String()}).Inc()
	c.metrics.Counter(MetricBytesSent, nil).Add(float64(size))
}

// MessagePublished records a published message by requested QoS.
func (c *ClientMetrics) MessagePublished(qos QoS) {
	c.metrics.Counter(MetricMessagesPublished, MetricLabels{LabelQoS: qos.String()}).Inc()
}

// PublishLatency records the time spent in one Publish call.
func (c *ClientMetrics) PublishLatency(d time.Duration) {
	c.metrics.Histogram(MetricPublishLatency, nil).ObserveDuration(d)
}

// BytesDrained records unsolicited inbound bytes read after a publish.
func (c *ClientMetrics) BytesDrained(n int) {
	c.metrics.Counter(MetricInboundBytesDrained, nil).Add(float64(n))
}
