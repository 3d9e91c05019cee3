package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BusinessMetrics holds the ledger counters.
type BusinessMetrics struct {
	CreditsPurchasedTotal  *prometheus.CounterVec
	PurchasesTotal         *prometheus.CounterVec
	UnlocksTotal           *prometheus.CounterVec
	CreditsSpentTotal      prometheus.Counter
	EarningsNetTotal       prometheus.Counter
	PayoutsRequestedTotal  prometheus.Counter
	PayoutTransitionsTotal *prometheus.CounterVec
	SweepDuration          *prometheus.HistogramVec
}

// Business is always usable: collectors exist before InitBusinessMetrics
// registers them, so services and tests can record without setup.
var Business = newBusinessMetrics()

func newBusinessMetrics() *BusinessMetrics {
	return &BusinessMetrics{
		CreditsPurchasedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_purchased_credits_total",
			Help: "Credits granted through confirmed purchases",
		}, []string{"provider"}),
		PurchasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_purchases_total",
			Help: "Purchase confirmations by outcome",
		}, []string{"provider", "outcome"}),
		UnlocksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_unlocks_total",
			Help: "Chapter unlock attempts by outcome",
		}, []string{"outcome"}),
		CreditsSpentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_spent_credits_total",
			Help: "Credits debited by unlocks",
		}),
		EarningsNetTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_earnings_net_usd_total",
			Help: "Net author earnings recorded, in USD",
		}),
		PayoutsRequestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credit_payouts_requested_total",
			Help: "Payouts created",
		}),
		PayoutTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_payout_transitions_total",
			Help: "Payout status transitions applied by the scheduler",
		}, []string{"status"}),
		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credit_payout_sweep_duration_seconds",
			Help:    "Duration of payout scheduler passes",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
	}
}

// InitBusinessMetrics registers the business collectors with the default registry.
func InitBusinessMetrics() {
	prometheus.MustRegister(
		Business.CreditsPurchasedTotal,
		Business.PurchasesTotal,
		Business.UnlocksTotal,
		Business.CreditsSpentTotal,
		Business.EarningsNetTotal,
		Business.PayoutsRequestedTotal,
		Business.PayoutTransitionsTotal,
		Business.SweepDuration,
	)
}
