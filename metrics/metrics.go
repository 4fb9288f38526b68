package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pharma_supply",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pharma_supply",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pharma_supply",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "path"},
	)

	ledgerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pharma_supply",
			Subsystem: "ledger",
			Name:      "calls_total",
			Help:      "Contract calls and transactions by method and outcome.",
		},
		[]string{"method", "result"},
	)

	ledgerReceiptWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pharma_supply",
			Subsystem: "ledger",
			Name:      "receipt_wait_seconds",
			Help:      "Time spent waiting for a submitted transaction to be mined.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pharma_supply",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Authentication flow steps by outcome.",
		},
		[]string{"step", "result"},
	)

	purchasesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pharma_supply",
			Subsystem: "purchases",
			Name:      "recorded_total",
			Help:      "Purchase records persisted.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerCalls,
		ledgerReceiptWait,
		authEvents,
		purchasesRecorded,
	)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLedgerCall counts one contract read or write.
func RecordLedgerCall(method string, err error) {
	ledgerCalls.WithLabelValues(method, result(err)).Inc()
}

// ObserveReceiptWait records how long a receipt took to arrive.
func ObserveReceiptWait(d time.Duration) {
	ledgerReceiptWait.Observe(d.Seconds())
}

// RecordAuthEvent counts one step of the auth flow.
func RecordAuthEvent(step string, err error) {
	authEvents.WithLabelValues(step, result(err)).Inc()
}

// RecordPurchase counts one stored purchase.
func RecordPurchase() {
	purchasesRecorded.Inc()
}

// Middleware instruments every request with the matched route path.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry over /metrics.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
