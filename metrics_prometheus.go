package mqttpub

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics on Prometheus collectors. One vector is
// registered per metric name; its label names are fixed by the first call.
// Calls with a different label set for the same name get a no-op metric.
//
// Values are mirrored locally so Value, Count and Sum work without scraping.
type PrometheusMetrics struct {
	registerer prometheus.Registerer
	namespace  string

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	series     map[string]any
}

// NewPrometheusMetrics creates collectors on reg, prometheus.DefaultRegisterer
// when nil. namespace is prepended to every metric name when non-empty.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: reg,
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		series:     make(map[string]any),
	}
}

// Counter returns a counter metric.
func (p *PrometheusMetrics) Counter(name string, labels MetricLabels) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := labelsKey(name, labels)
	if c, ok := p.series[key].(*promCounter); ok {
		return c
	}

	vec, ok := p.counters[name]
	if !ok {
		vec = register(p.registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      name,
			Help:      "mqttpub client counter " + name,
		}, labelNames(labels)))
		p.counters[name] = vec
	}

	counter, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return noOpCounter{}
	}

	c := &promCounter{counter: counter}
	p.series[key] = c
	return c
}

// Gauge returns a gauge metric.
func (p *PrometheusMetrics) Gauge(name string, labels MetricLabels) Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := labelsKey(name, labels)
	if g, ok := p.series[key].(*promGauge); ok {
		return g
	}

	vec, ok := p.gauges[name]
	if !ok {
		vec = register(p.registerer, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      name,
			Help:      "mqttpub client gauge " + name,
		}, labelNames(labels)))
		p.gauges[name] = vec
	}

	gauge, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return noOpGauge{}
	}

	g := &promGauge{gauge: gauge}
	p.series[key] = g
	return g
}

// Histogram returns a histogram metric with the default buckets.
func (p *PrometheusMetrics) Histogram(name string, labels MetricLabels) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := labelsKey(name, labels)
	if h, ok := p.series[key].(*promHistogram); ok {
		return h
	}

	vec, ok := p.histograms[name]
	if !ok {
		vec = register(p.registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      name,
			Help:      "mqttpub client histogram " + name,
			Buckets:   prometheus.DefBuckets,
		}, labelNames(labels)))
		p.histograms[name] = vec
	}

	observer, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		return noOpHistogram{}
	}

	h := &promHistogram{observer: observer}
	p.series[key] = h
	return h
}

// register registers c, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func labelNames(labels MetricLabels) []string {
	return slices.Sorted(maps.Keys(labels))
}

type promCounter struct {
	counter prometheus.Counter
	value   atomicFloat
}

func (c *promCounter) Inc() { c.Add(1) }

// Add ignores negative deltas, which Prometheus counters reject.
func (c *promCounter) Add(delta float64) {
	if delta < 0 {
		return
	}
	c.counter.Add(delta)
	c.value.add(delta)
}

func (c *promCounter) Value() float64 { return c.value.load() }

type promGauge struct {
	mu    sync.Mutex
	gauge prometheus.Gauge
	value float64
}

func (g *promGauge) Set(value float64) {
	g.mu.Lock()
	g.value = value
	g.gauge.Set(value)
	g.mu.Unlock()
}

func (g *promGauge) Inc()              { g.Add(1) }
func (g *promGauge) Dec()              { g.Add(-1) }
func (g *promGauge) Sub(delta float64) { g.Add(-delta) }

func (g *promGauge) Add(delta float64) {
	g.mu.Lock()
	g.value += delta
	g.gauge.Add(delta)
	g.mu.Unlock()
}

func (g *promGauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

type promHistogram struct {
	observer prometheus.Observer
	count    atomic.Uint64
	sum      atomicFloat
}

func (h *promHistogram) Observe(value float64) {
	h.observer.Observe(value)
	h.count.Add(1)
	h.sum.add(value)
}

func (h *promHistogram) ObserveDuration(d time.Duration) { h.Observe(d.Seconds()) }
func (h *promHistogram) Count() uint64                   { return h.count.Load() }
func (h *promHistogram) Sum() float64                    { return h.sum.load() }
