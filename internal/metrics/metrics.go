package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parcel"

// Collector holds the engine's Prometheus metrics on a private registry.
// All record methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	Payments            *prometheus.CounterVec
	GatewayLatency      *prometheus.HistogramVec
	ActivationDecisions *prometheus.CounterVec
	TenantsDowngraded   prometheus.Counter
	ListingsDemoted     prometheus.Counter
	ReconcileFailures   prometheus.Counter
	StaleTransactions   prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payment verification attempts by type and outcome",
		}, []string{"type", "outcome"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_verify_seconds",
			Help:      "Latency of gateway verify calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		ActivationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activation_decisions_total",
			Help:      "Listing activation decisions by resulting status",
		}, []string{"status"}),
		TenantsDowngraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_tenants_downgraded_total",
			Help:      "Agents downgraded to starter by the expiry reconciler",
		}),
		ListingsDemoted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_listings_demoted_total",
			Help:      "Active listings moved back to pending by quota enforcement",
		}),
		ReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_tenant_failures_total",
			Help:      "Per-agent failures skipped by the expiry reconciler",
		}),
		StaleTransactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_transactions_failed_total",
			Help:      "Pending ledger rows failed by the sweeper",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.Payments,
		c.GatewayLatency,
		c.ActivationDecisions,
		c.TenantsDowngraded,
		c.ListingsDemoted,
		c.ReconcileFailures,
		c.StaleTransactions,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordPayment(kind, outcome string) {
	if c == nil {
		return
	}
	c.Payments.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) ObserveGateway(provider string, seconds float64) {
	if c == nil {
		return
	}
	c.GatewayLatency.WithLabelValues(provider).Observe(seconds)
}

func (c *Collector) RecordActivation(status string) {
	if c == nil {
		return
	}
	c.ActivationDecisions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordReconcile(downgraded, demoted, failures int) {
	if c == nil {
		return
	}
	c.TenantsDowngraded.Add(float64(downgraded))
	c.ListingsDemoted.Add(float64(demoted))
	c.ReconcileFailures.Add(float64(failures))
}

func (c *Collector) RecordStale(n int64) {
	if c == nil {
		return
	}
	c.StaleTransactions.Add(float64(n))
}
