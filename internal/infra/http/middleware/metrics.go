package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_status_changes_total",
			Help: "Total number of lead status changes by target status",
		},
		[]string{"status"},
	)

	leadsReassigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_reassigned_total",
			Help: "Total number of stale leads reassigned by the sweep",
		},
	)

	leadsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_imported_total",
			Help: "Total number of leads created by imports",
		},
	)

	transactionAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_transaction_amount_total",
			Help: "Sum of recorded transaction amounts in BRL",
		},
		[]string{"type"},
	)

	commissionsPaid = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_commissions_paid_amount_total",
			Help: "Sum of paid commissions in BRL",
		},
	)

	remoteWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_remote_write_errors_total",
			Help: "Total number of failed writes to the hosted store",
		},
		[]string{"operation"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the path label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Recorder publishes the lead manager events as Prometheus metrics.
type Recorder struct{}

func NewRecorder() Recorder {
	return Recorder{}
}

func (Recorder) StatusChanged(to entity.LeadStatus) {
	leadStatusChanges.WithLabelValues(string(to)).Inc()
}

func (Recorder) LeadsReassigned(n int) {
	leadsReassigned.Add(float64(n))
}

func (Recorder) LeadsImported(n int) {
	leadsImported.Add(float64(n))
}

func (Recorder) TransactionRecorded(txType entity.TransactionType, amount decimal.Decimal) {
	transactionAmount.WithLabelValues(string(txType)).Add(amount.InexactFloat64())
}

func (Recorder) CommissionPaid(amount decimal.Decimal) {
	commissionsPaid.Add(amount.InexactFloat64())
}

func (Recorder) RemoteWriteFailed(operation string) {
	remoteWriteErrors.WithLabelValues(operation).Inc()
}
