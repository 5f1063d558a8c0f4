package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "sokoni"

// Checkout outcomes, exported as the "outcome" label of sokoni_checkout_total.
const (
	OrdersPlaced             = "orders_placed"
	CheckoutEmptyCart        = "checkout_empty_cart"
	CheckoutValidationFailed = "checkout_validation_failed"
	CheckoutStockExhausted   = "checkout_stock_exhausted"
	EventPublishFailed       = "event_publish_failed"
)

var outcomes = []string{
	OrdersPlaced,
	CheckoutEmptyCart,
	CheckoutValidationFailed,
	CheckoutStockExhausted,
	EventPublishFailed,
}

// Registry wraps a prometheus registry with the storefront's collectors.
// A nil *Registry is valid and discards everything, so components can run
// without metrics wired.
type Registry struct {
	reg      *prometheus.Registry
	checkout *prometheus.CounterVec
	duration prometheus.Histogram
	handler  http.Handler
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_placement_duration_seconds",
		Help:      "Time spent placing an order.",
		Buckets:   prometheus.DefBuckets,
	})

	reg.MustRegister(checkout, duration)

	// pre-create every outcome so the series exist at zero
	for _, o := range outcomes {
		checkout.WithLabelValues(o)
	}

	return &Registry{
		reg:      reg,
		checkout: checkout,
		duration: duration,
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}
}

// MustRegister adds extra collectors, e.g. database pool stats.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

func (r *Registry) Inc(outcome string) {
	if r == nil {
		return
	}
	r.checkout.WithLabelValues(outcome).Inc()
}

// OrderTimer starts timing one order placement; call ObserveDuration when done.
func (r *Registry) OrderTimer() *prometheus.Timer {
	if r == nil {
		return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
	}
	return prometheus.NewTimer(r.duration)
}

// Value reads the current count for an outcome.
func (r *Registry) Value(outcome string) float64 {
	if r == nil {
		return 0
	}
	m := &dto.Metric{}
	if err := r.checkout.WithLabelValues(outcome).Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return r.handler
}
