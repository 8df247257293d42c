// internal/sale/metrics.go
package sale

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	purchases  *prometheus.CounterVec
	rejections *prometheus.CounterVec
	refreshes  *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   prometheus.Histogram
}

// NewMetrics creates the session metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candy_mint_purchases_total",
			Help: "Purchase attempts by result",
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candy_mint_purchase_rejections_total",
			Help: "Purchases rejected locally before submission",
		}, []string{"reason"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candy_mint_refreshes_total",
			Help: "Sale state reads by result",
		}, []string{"result"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candy_mint_purchase_in_flight",
			Help: "1 while a purchase is in flight",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candy_mint_purchase_seconds",
			Help:    "Duration of purchase attempts",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.purchases, m.rejections, m.refreshes, m.inFlight, m.duration)
	}
	return m
}

func (m *Metrics) trackPurchase(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) trackRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) trackRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) setInFlight(inFlight bool) {
	if m == nil {
		return
	}
	if inFlight {
		m.inFlight.Set(1)
		return
	}
	m.inFlight.Set(0)
}
