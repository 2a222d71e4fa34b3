package funds

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the ledger's Prometheus collectors.
type Metrics struct {
	Operations    *prometheus.CounterVec
	WalletLatency *prometheus.HistogramVec
	TotalInvested prometheus.Gauge
	Tier          prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundfusion_operations_total",
				Help: "Funds operations by kind and result",
			},
			[]string{"op", "result"},
		),
		WalletLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundfusion_wallet_call_seconds",
				Help:    "Latency of wallet provider calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5, 10},
			},
			[]string{"op"},
		),
		TotalInvested: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundfusion_total_invested",
			Help: "Total invested across the ledger",
		}),
		Tier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fundfusion_badge_level",
			Help: "Current badge level, 0 Bronze to 3 Diamond",
		}),
	}
	reg.MustRegister(m.Operations, m.WalletLatency, m.TotalInvested, m.Tier)
	return m
}
