package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		signupsCreatedTotal,
		paymentsReconciledTotal,
		accountsExpiredTotal,
		accountsPurgedTotal,
		deletionWarningsTotal,
		sweepDuration,
	)
}

var (
	signupsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_created_total",
			Help: "Total number of pending signups created.",
		},
	)

	paymentsReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_reconciled_total",
			Help: "Confirmation events reconciled into durable state.",
		},
		[]string{"shape"}, // 'signup' or 'renewal'
	)

	accountsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_expired_total",
			Help: "Accounts flipped active->pending by the expiry sweep.",
		},
	)

	accountsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_purged_total",
			Help: "Accounts removed by the retention sweep.",
		},
	)

	deletionWarningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deletion_warnings_total",
			Help: "Deletion warning notifications dispatched.",
		},
	)

	sweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Wall time of one sweep cycle.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sweep"}, // 'expiry' or 'retention'
	)
)

func IncSignupsCreated() { signupsCreatedTotal.Inc() }

func IncPaymentsReconciled(shape string) {
	paymentsReconciledTotal.WithLabelValues(shape).Inc()
}

func AddAccountsExpired(n int) { accountsExpiredTotal.Add(float64(n)) }

func IncAccountsPurged() { accountsPurgedTotal.Inc() }

func AddDeletionWarnings(n int) { deletionWarningsTotal.Add(float64(n)) }

func ObserveSweepDuration(sweep string, seconds float64) {
	sweepDuration.WithLabelValues(sweep).Observe(seconds)
}
