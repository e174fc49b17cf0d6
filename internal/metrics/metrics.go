package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	gatewayOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "gateway_operations_total",
			Help:      "Count of gateway operations by the store that served them.",
		},
		[]string{"op", "source"},
	)

	gatewayFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "gateway_fallbacks_total",
			Help:      "Count of remote failures that fell back to the local mirror.",
		},
		[]string{"op", "reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "http_requests_total",
			Help:      "Count of API requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	exportsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "exports_generated_total",
			Help:      "Count of generated report documents by format.",
		},
		[]string{"format"},
	)

	backups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "miru",
			Name:      "database_backups_total",
			Help:      "Count of database backups by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(gatewayOps, gatewayFallbacks, httpRequests, exportsGenerated, backups)
	})
}

func IncGatewayOp(op, source string) {
	gatewayOps.WithLabelValues(op, source).Inc()
}

func IncGatewayFallback(op, reason string) {
	gatewayFallbacks.WithLabelValues(op, reason).Inc()
}

func IncHTTPRequest(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func IncExport(format string) {
	exportsGenerated.WithLabelValues(format).Inc()
}

func IncBackup(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	backups.WithLabelValues(result).Inc()
}
