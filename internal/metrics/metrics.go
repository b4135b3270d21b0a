package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultCommitted  = "committed"
	resultRolledBack = "rolled_back"
)

type Registry struct {
	reg         *prometheus.Registry
	TxTotal     *prometheus.CounterVec
	TxDuration  *prometheus.HistogramVec
	OrphanItems prometheus.Gauge
	AuditRuns   *prometheus.CounterVec
	RateLimited prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	txTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_tx_total",
		Help: "Resolved order transactions by operation and result.",
	}, []string{"op", "result"})
	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderdesk_tx_duration_seconds",
		Help:    "Time from begin to commit or rollback.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	orphans := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orderdesk_orphan_order_items",
		Help: "Order items whose order no longer exists, as of the last audit.",
	})
	auditRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderdesk_orphan_audit_runs_total",
	}, []string{"result"})
	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderdesk_rate_limited_requests_total",
	})

	r.MustRegister(
		txTotal, txDuration, orphans, auditRuns, rateLimited,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &Registry{
		reg:         r,
		TxTotal:     txTotal,
		TxDuration:  txDuration,
		OrphanItems: orphans,
		AuditRuns:   auditRuns,
		RateLimited: rateLimited,
	}
}

// ObserveTx records one resolved transaction
func (r *Registry) ObserveTx(op string, committed bool, elapsed time.Duration) {
	result := resultRolledBack
	if committed {
		result = resultCommitted
	}
	r.TxTotal.WithLabelValues(op, result).Inc()
	r.TxDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetOrphanItems records the outcome of an orphan audit run
func (r *Registry) SetOrphanItems(count int64) {
	r.OrphanItems.Set(float64(count))
	r.AuditRuns.WithLabelValues("ok").Inc()
}

func (r *Registry) AuditFailed() {
	r.AuditRuns.WithLabelValues("error").Inc()
}

func (r *Registry) IncRateLimited() {
	r.RateLimited.Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
