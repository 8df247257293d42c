// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	pollCounter       prometheus.Counter
	outcomeCounter    *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

// NewMetrics creates the watcher metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	pollCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "candy_mint_signature_polls_total",
		Help: "Total number of signature status queries",
	})
	outcomeCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "candy_mint_confirmations_total",
		Help: "Confirmation outcomes by kind",
	}, []string{"outcome"})
	durationHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "candy_mint_confirmation_seconds",
		Help:    "Time from submission to terminal status",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})

	if reg != nil {
		reg.MustRegister(pollCounter, outcomeCounter, durationHistogram)
	}

	return &Metrics{
		pollCounter:       pollCounter,
		outcomeCounter:    outcomeCounter,
		durationHistogram: durationHistogram,
	}
}

func (m *Metrics) trackPoll() {
	if m == nil {
		return
	}
	m.pollCounter.Inc()
}

func (m *Metrics) trackOutcome(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomeCounter.WithLabelValues(kind).Inc()
	m.durationHistogram.Observe(elapsed.Seconds())
}
