// middleware/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var (
	dispatchTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jlserve_dispatch_seconds",
			Help:    "endpoint dispatch time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalRequestsToPath = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jlserve_requests_to_path_total", Help: "requests by code, path and method"},
		[]string{"code", "path", "method"},
	)

	totalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jlserve_requests_total", Help: "requests by code and method"},
		[]string{"code", "method"},
	)
)

// Collect wraps each request and records dispatch counters after it ends.
func Collect() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			defer func() {
				elapsed := time.Since(startTime)
				if r.URL.Path != "/metrics" {
					code := strconv.Itoa(ww.Status())
					path := r.URL.Path // path only; avoid cardinality explosion

					totalRequestsToPath.WithLabelValues(code, path, r.Method).Inc()
					totalRequests.WithLabelValues(code, r.Method).Inc()
					dispatchTime.Observe(elapsed.Seconds())
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func NewPromHttpHandler() http.Handler { return promhttp.Handler() }
func ProvideMetrics() http.Handler     { return NewPromHttpHandler() }

func init() {
	prometheus.MustRegister(
		dispatchTime,
		totalRequestsToPath,
		totalRequests,
	)
}

// Module provides the /metrics handler under the name routing expects.
var Module = fx.Options(
	fx.Provide(fx.Annotate(ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
)
