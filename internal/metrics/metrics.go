// Package metrics exposes delivery metrics for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Delivery results.
const (
	ResultSent           = "sent"
	ResultGenerateFailed = "generate_failed"
	ResultSendFailed     = "send_failed"
)

// Collector records scheduler and delivery metrics.
type Collector struct {
	deliveries *prometheus.CounterVec
	generation prometheus.Histogram
	dueUsers   prometheus.Gauge
	ticks      prometheus.Counter
	storeFail  prometheus.Counter
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etymology_deliveries_total",
			Help: "Delivery attempts by trigger and result.",
		}, []string{"trigger", "result"}),
		generation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "etymology_generation_seconds",
			Help:    "Latency of content generation calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		dueUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "etymology_due_users",
			Help: "Users found due by the last scheduler tick.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etymology_ticks_total",
			Help: "Scheduler ticks executed.",
		}),
		storeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etymology_store_failures_total",
			Help: "Failed writes of delivery state.",
		}),
	}
	reg.MustRegister(c.deliveries, c.generation, c.dueUsers, c.ticks, c.storeFail)
	return c
}

func (c *Collector) RecordDelivery(trigger, result string) {
	c.deliveries.WithLabelValues(trigger, result).Inc()
}

func (c *Collector) ObserveGeneration(d time.Duration) {
	c.generation.Observe(d.Seconds())
}

func (c *Collector) RecordTick(due int) {
	c.ticks.Inc()
	c.dueUsers.Set(float64(due))
}

func (c *Collector) RecordStoreFailure() {
	c.storeFail.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
